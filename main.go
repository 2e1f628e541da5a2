package main

import (
	"fmt"
	"log"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/utils"
	"github.com/meenmo/curvelib/valuation"
)

func main() {
	curveDate := utils.DateParser("2025-01-29")

	oisQuotes := []bootstrap.Quote{
		{Tenor: "1Y", Rate: 2.3112},
		{Tenor: "2Y", Rate: 2.1710},
		{Tenor: "3Y", Rate: 2.1482},
		{Tenor: "5Y", Rate: 2.2047},
		{Tenor: "7Y", Rate: 2.2839},
		{Tenor: "10Y", Rate: 2.3827},
	}
	irsQuotes := []bootstrap.Quote{
		{Tenor: "6M", Rate: 2.5510},
		{Tenor: "1Y", Rate: 2.4110},
		{Tenor: "2Y", Rate: 2.2750},
		{Tenor: "3Y", Rate: 2.2590},
		{Tenor: "5Y", Rate: 2.3205},
		{Tenor: "7Y", Rate: 2.4021},
		{Tenor: "10Y", Rate: 2.5216},
	}

	estr, err := market.PresetFor(market.ESTR)
	if err != nil {
		log.Fatal(err)
	}
	euribor, err := market.PresetFor(market.EURIBOR6M)
	if err != nil {
		log.Fatal(err)
	}

	oisInstruments, err := bootstrap.BuildInstruments(curveDate, oisQuotes, estr)
	if err != nil {
		log.Fatal(err)
	}
	disc, oisResults, err := bootstrap.NewDiscount(curveDate, estr).Bootstrap(oisInstruments)
	if err != nil {
		log.Fatal(err)
	}

	irsInstruments, err := bootstrap.BuildInstruments(curveDate, irsQuotes, euribor)
	if err != nil {
		log.Fatal(err)
	}
	projection, err := bootstrap.NewProjection(curveDate, euribor, disc)
	if err != nil {
		log.Fatal(err)
	}
	proj, _, err := projection.Bootstrap(irsInstruments)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("ESTR discount pillars:")
	for _, r := range oisResults {
		fmt.Printf("  %-4s %s  DF=%.9f  zero=%.6f%%\n", r.Tenor, r.Date.Format("2006-01-02"), r.DF, r.Zero)
	}

	oisTenY := oisInstruments[len(oisInstruments)-1]
	oisPar, err := valuation.OISParRate(disc, oisTenY.FixedPeriods)
	if err != nil {
		log.Fatal(err)
	}
	irsTenY := irsInstruments[len(irsInstruments)-1]
	irsPar, err := valuation.ParRate(proj, disc, irsTenY.FixedPeriods, irsTenY.FloatPeriods)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("10Y ESTR OIS par rate: %.6f%% (quoted %.4f%%)\n", oisPar*100.0, oisTenY.Rate*100.0)
	fmt.Printf("10Y EURIBOR6M par rate: %.6f%% (quoted %.4f%%)\n", irsPar*100.0, irsTenY.Rate*100.0)
}
