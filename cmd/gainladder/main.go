// Prints the Airspy Mini preset gain ladders as resolved stage gains.
package main

import (
	"fmt"
	"log"

	"github.com/rjboer/GoAirspy/airspy"
)

func main() {
	fmt.Println("index  linearity (lna/mixer/vga)  sensitivity (lna/mixer/vga)")
	for i := 0; i <= airspy.MaxPresetGain; i++ {
		lin, err := airspy.LinearityGain(i)
		if err != nil {
			log.Fatal(err)
		}
		sen, err := airspy.SensitivityGain(i)
		if err != nil {
			log.Fatal(err)
		}
		ll, lm, lv := lin.StageGains()
		sl, sm, sv := sen.StageGains()
		fmt.Printf("%5d  %10d/%d/%d %20d/%d/%d\n", i, ll, lm, lv, sl, sm, sv)
	}
}
