// Command csv2geojson converts the mapped aid-location CSV into GeoJSON.
//
//	csv2geojson [input.csv] [output.geojson]
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/FACorreiaa/aid-map/internal/app/domain/geojson"
)

const (
	defaultInput  = "all-aid-mapped.csv"
	defaultOutput = "all-aid-mapped.geojson"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	in, out := defaultInput, defaultOutput
	if len(args) >= 1 {
		in = args[0]
	}
	if len(args) >= 2 {
		out = args[1]
	}

	if _, err := os.Stat(in); err != nil {
		return fmt.Errorf("input CSV not found: %s", in)
	}

	n, err := geojson.ConvertFile(in, out)
	if err != nil {
		return err
	}

	fmt.Printf("Wrote GeoJSON with %d features to: %s\n", n, out)
	return nil
}
