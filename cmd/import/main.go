package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lintang-b-s/nearest-cities/pkg/kvdb"
	"github.com/lintang-b-s/nearest-cities/pkg/osmimport"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	mapFile   = flag.String("f", "cities.osm.pbf", "openstreetmap extract (.osm.pbf or .osm) to import cities from")
	dbPath    = flag.String("db", "cities.db", "city store path, the API server must not hold it open")
	batchSize = flag.Int("batch", 1000, "cities written per store transaction")
)

func main() {
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	f, err := os.Open(*mapFile)
	if err != nil {
		return err
	}
	defer f.Close()

	cities, err := parse(ctx, f, *mapFile)
	if err != nil {
		return err
	}

	db, err := bolt.Open(*dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := kvdb.NewCityStore(db)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(cities),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Importing cities..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	size := *batchSize
	if size <= 0 {
		size = 1
	}

	imported, skipped := 0, 0
	batch := make([]kvdb.CityInput, 0, size)
	for start := 0; start < len(cities); start += size {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		end := min(start+size, len(cities))
		batch = batch[:0]
		for _, c := range cities[start:end] {
			batch = append(batch, kvdb.CityInput{Name: c.Name, Lat: c.Lat, Lon: c.Lon})
		}

		saved, dup, err := store.SaveCities(batch)
		if err != nil {
			return err
		}
		imported += saved
		skipped += dup
		_ = bar.Add(len(batch))
	}
	_ = bar.Finish()

	logger.Info("import finished", zap.String("file", *mapFile), zap.Int("found", len(cities)),
		zap.Int("imported", imported), zap.Int("skipped_existing", skipped))
	return nil
}

func parse(ctx context.Context, r io.Reader, name string) ([]osmimport.ImportedCity, error) {
	if strings.HasSuffix(name, ".osm") {
		return osmimport.ParseCitiesXML(ctx, r)
	}
	return osmimport.ParseCities(ctx, r)
}
