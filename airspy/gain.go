package airspy

import "fmt"

// Stage gain limits of the Airspy Mini receive chain.
const (
	MaxLNAGain    = 14
	MaxMixerGain  = 15
	MaxVGAGain    = 15
	MaxPresetGain = 21
)

// GainMode identifies how a GainProfile resolves its stage gains.
type GainMode int

const (
	GainManual GainMode = iota
	GainLinearity
	GainSensitivity
)

func (m GainMode) String() string {
	switch m {
	case GainManual:
		return "manual"
	case GainLinearity:
		return "linearity"
	case GainSensitivity:
		return "sensitivity"
	default:
		return "unknown"
	}
}

type stageGains struct {
	lna, mixer, vga int
}

// The airspy_rx preset ladders: 22 fixed entries each, index 0 is maximum
// gain. These tables come from the device's documented gain ladder and are
// reproduced verbatim, never recomputed.
var linearityPresets = [MaxPresetGain + 1]stageGains{
	{14, 12, 13}, {14, 12, 12}, {14, 11, 11}, {13, 9, 11},
	{12, 8, 11}, {10, 7, 11}, {9, 6, 11}, {9, 6, 10},
	{8, 5, 10}, {9, 0, 10}, {8, 0, 10}, {6, 1, 10},
	{5, 0, 10}, {3, 0, 10}, {1, 2, 10}, {0, 2, 10},
	{0, 1, 9}, {0, 1, 8}, {0, 1, 7}, {0, 1, 6},
	{0, 0, 5}, {0, 0, 4},
}

var sensitivityPresets = [MaxPresetGain + 1]stageGains{
	{14, 12, 13}, {14, 12, 12}, {14, 12, 11}, {14, 12, 10},
	{14, 11, 9}, {14, 10, 8}, {14, 10, 7}, {14, 9, 6},
	{14, 9, 5}, {13, 8, 5}, {12, 7, 5}, {12, 4, 5},
	{9, 4, 5}, {9, 4, 4}, {8, 3, 4}, {7, 2, 4},
	{6, 2, 4}, {5, 1, 4}, {3, 0, 4}, {2, 0, 4},
	{1, 0, 4}, {0, 0, 4},
}

// GainProfile is an immutable gain selection for the Airspy Mini: either an
// explicit LNA/mixer/VGA triple or a single index into one of the two preset
// ladders. Exactly one representation is active; the constructors make mixing
// them inexpressible, and validation happens once at construction.
type GainProfile struct {
	mode            GainMode
	lna, mixer, vga int
	preset          int
}

// NewGainProfile builds a manual profile from explicit stage gains. All three
// stages are required; each is validated against its own inclusive range
// (LNA 0-14, mixer 0-15, VGA 0-15).
func NewGainProfile(lna, mixer, vga int) (GainProfile, error) {
	if err := validateGain("lna gain", lna, MaxLNAGain); err != nil {
		return GainProfile{}, err
	}
	if err := validateGain("mixer gain", mixer, MaxMixerGain); err != nil {
		return GainProfile{}, err
	}
	if err := validateGain("vga gain", vga, MaxVGAGain); err != nil {
		return GainProfile{}, err
	}
	return GainProfile{mode: GainManual, lna: lna, mixer: mixer, vga: vga}, nil
}

// LinearityGain builds a profile from the airspy_rx linearity ladder (0-21).
func LinearityGain(index int) (GainProfile, error) {
	if err := validateGain("linearity gain", index, MaxPresetGain); err != nil {
		return GainProfile{}, err
	}
	return GainProfile{mode: GainLinearity, preset: index}, nil
}

// SensitivityGain builds a profile from the airspy_rx sensitivity ladder (0-21).
func SensitivityGain(index int) (GainProfile, error) {
	if err := validateGain("sensitivity gain", index, MaxPresetGain); err != nil {
		return GainProfile{}, err
	}
	return GainProfile{mode: GainSensitivity, preset: index}, nil
}

// Mode reports which representation the profile carries.
func (g GainProfile) Mode() GainMode { return g.mode }

// StageGains resolves the profile to explicit (lna, mixer, vga) stage gains:
// the manual values directly, or a lookup into the selected preset ladder.
func (g GainProfile) StageGains() (lna, mixer, vga int) {
	switch g.mode {
	case GainLinearity:
		p := linearityPresets[g.preset]
		return p.lna, p.mixer, p.vga
	case GainSensitivity:
		p := sensitivityPresets[g.preset]
		return p.lna, p.mixer, p.vga
	default:
		return g.lna, g.mixer, g.vga
	}
}

func validateGain(name string, value, max int) error {
	if value < 0 || value > max {
		return fmt.Errorf("%s must be within 0-%d, got %d", name, max, value)
	}
	return nil
}
