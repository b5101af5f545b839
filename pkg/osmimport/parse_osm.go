package osmimport

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// place values imported as cities
var ValidPlaceTags = map[string]bool{
	"city": true,
	"town": true,
}

type ImportedCity struct {
	OSMID int64
	Name  string
	Place string
	Lat   float64
	Lon   float64
}

// ParseCities reads an .osm.pbf stream and returns every city or town node with a name.
func ParseCities(ctx context.Context, r io.Reader) ([]ImportedCity, error) {
	scanner := osmpbf.New(ctx, r, runtime.GOMAXPROCS(0))
	scanner.SkipWays = true
	scanner.SkipRelations = true
	return scanCities(scanner)
}

// ParseCitiesXML is ParseCities for .osm XML extracts.
func ParseCitiesXML(ctx context.Context, r io.Reader) ([]ImportedCity, error) {
	return scanCities(osmxml.New(ctx, r))
}

func scanCities(scanner osm.Scanner) ([]ImportedCity, error) {
	defer scanner.Close()

	cities := []ImportedCity{}
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if city, ok := cityFromNode(node); ok {
			cities = append(cities, city)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan osm objects: %w", err)
	}
	return cities, nil
}

func cityFromNode(node *osm.Node) (ImportedCity, bool) {
	place := node.Tags.Find("place")
	if !ValidPlaceTags[place] {
		return ImportedCity{}, false
	}

	name := strings.TrimSpace(node.Tags.Find("name"))
	if name == "" {
		return ImportedCity{}, false
	}

	return ImportedCity{
		OSMID: int64(node.ID),
		Name:  name,
		Place: place,
		Lat:   node.Lat,
		Lon:   node.Lon,
	}, true
}
