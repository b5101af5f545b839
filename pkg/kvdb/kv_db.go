package kvdb

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/lintang-b-s/nearest-cities/pkg"
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	"github.com/vmihailenco/msgpack/v5"

	"go.etcd.io/bbolt"
)

const (
	BBOLTDB_CITY_BUCKET      = "cities"
	BBOLTDB_CITY_NAME_BUCKET = "cityNames"
	BBOLTDB_REQUEST_BUCKET   = "requests"
)

// CityStore is the durable source of truth for cities and the request audit log.
// cities are keyed by their sequence id, cityNames maps a normalized name to that id.
type CityStore struct {
	db *bbolt.DB
}

func NewCityStore(db *bbolt.DB) (*CityStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{BBOLTDB_CITY_BUCKET, BBOLTDB_CITY_NAME_BUCKET, BBOLTDB_REQUEST_BUCKET} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CityStore{db: db}, nil
}

// NormalizeName is the key city names are unique on.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SaveCity stores a new city under the next id. returns an ErrConflict coded error if the normalized name is taken.
func (cs *CityStore) SaveCity(name string, lat, lon float64) (city datastructure.City, err error) {
	if NormalizeName(name) == "" {
		return city, pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "city name is empty")
	}

	err = cs.db.Update(func(tx *bbolt.Tx) error {
		city, err = putCity(tx, name, lat, lon)
		return err
	})
	return city, err
}

// CityInput is a city that has no id yet.
type CityInput struct {
	Name string
	Lat  float64
	Lon  float64
}

// SaveCities stores a batch of cities in one transaction.
// blank or already taken names are skipped and counted, any other error rolls back the whole batch.
func (cs *CityStore) SaveCities(batch []CityInput) (saved, skipped int, err error) {
	err = cs.db.Update(func(tx *bbolt.Tx) error {
		saved, skipped = 0, 0
		for _, in := range batch {
			if NormalizeName(in.Name) == "" {
				skipped++
				continue
			}
			_, err := putCity(tx, in.Name, in.Lat, in.Lon)
			switch {
			case pkg.HasCode(err, pkg.ErrConflict):
				skipped++
			case err != nil:
				return err
			default:
				saved++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return saved, skipped, nil
}

func putCity(tx *bbolt.Tx, name string, lat, lon float64) (datastructure.City, error) {
	name = strings.TrimSpace(name)
	normalized := NormalizeName(name)

	names := tx.Bucket([]byte(BBOLTDB_CITY_NAME_BUCKET))
	if names.Get([]byte(normalized)) != nil {
		return datastructure.City{}, pkg.WrapErrorf(nil, pkg.ErrConflict, "city %s already exists", name)
	}

	cities := tx.Bucket([]byte(BBOLTDB_CITY_BUCKET))
	seq, err := cities.NextSequence()
	if err != nil {
		return datastructure.City{}, err
	}

	city := datastructure.NewCity(int(seq), name, lat, lon)
	cityBytes, err := msgpack.Marshal(city)
	if err != nil {
		return datastructure.City{}, err
	}

	if err := cities.Put(itob(seq), cityBytes); err != nil {
		return datastructure.City{}, err
	}
	if err := names.Put([]byte(normalized), itob(seq)); err != nil {
		return datastructure.City{}, err
	}
	return city, nil
}

// GetCity returns an ErrNotFound coded error if there is no city with this id.
func (cs *CityStore) GetCity(id int) (city datastructure.City, err error) {
	err = cs.db.View(func(tx *bbolt.Tx) error {
		cityBytes := tx.Bucket([]byte(BBOLTDB_CITY_BUCKET)).Get(itob(uint64(id)))
		if cityBytes == nil {
			return pkg.WrapErrorf(nil, pkg.ErrNotFound, "city with id %d not found", id)
		}
		return msgpack.Unmarshal(cityBytes, &city)
	})
	return
}

// GetCityByName looks the city up by its normalized name.
func (cs *CityStore) GetCityByName(name string) (city datastructure.City, err error) {
	err = cs.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(BBOLTDB_CITY_NAME_BUCKET)).Get([]byte(NormalizeName(name)))
		if id == nil {
			return pkg.WrapErrorf(nil, pkg.ErrNotFound, "city %s not found", name)
		}

		cityBytes := tx.Bucket([]byte(BBOLTDB_CITY_BUCKET)).Get(id)
		if cityBytes == nil {
			return pkg.WrapErrorf(nil, pkg.ErrInternalServerError, "city %s points to missing id %d", name, btoi(id))
		}
		return msgpack.Unmarshal(cityBytes, &city)
	})
	return
}

// DeleteCity removes the city and its name entry, returning what was removed.
func (cs *CityStore) DeleteCity(id int) (city datastructure.City, err error) {
	err = cs.db.Update(func(tx *bbolt.Tx) error {
		cities := tx.Bucket([]byte(BBOLTDB_CITY_BUCKET))
		key := itob(uint64(id))
		cityBytes := cities.Get(key)
		if cityBytes == nil {
			return pkg.WrapErrorf(nil, pkg.ErrNotFound, "city with id %d not found", id)
		}
		if err := msgpack.Unmarshal(cityBytes, &city); err != nil {
			return err
		}

		if err := cities.Delete(key); err != nil {
			return err
		}
		return tx.Bucket([]byte(BBOLTDB_CITY_NAME_BUCKET)).Delete([]byte(NormalizeName(city.Name)))
	})
	return
}

// ListCities pages through cities in id order.
func (cs *CityStore) ListCities(skip, limit int) ([]datastructure.City, error) {
	cities := []datastructure.City{}
	if limit <= 0 {
		return cities, nil
	}

	err := cs.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BBOLTDB_CITY_BUCKET)).Cursor()
		i := 0
		for k, v := c.First(); k != nil && len(cities) < limit; k, v = c.Next() {
			if i < skip {
				i++
				continue
			}
			var city datastructure.City
			if err := msgpack.Unmarshal(v, &city); err != nil {
				return fmt.Errorf("decode city %d: %w", btoi(k), err)
			}
			cities = append(cities, city)
		}
		return nil
	})
	return cities, err
}

// Points snapshots every stored city as a spatial index entry.
func (cs *CityStore) Points() ([]datastructure.CityPoint, error) {
	points := []datastructure.CityPoint{}
	err := cs.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(BBOLTDB_CITY_BUCKET)).ForEach(func(k, v []byte) error {
			var city datastructure.City
			if err := msgpack.Unmarshal(v, &city); err != nil {
				return fmt.Errorf("decode city %d: %w", btoi(k), err)
			}
			points = append(points, city.Point())
			return nil
		})
	})
	return points, err
}

func (cs *CityStore) CountCities() (n int, err error) {
	err = cs.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(BBOLTDB_CITY_BUCKET)).Stats().KeyN
		return nil
	})
	return
}

// LogRequest appends an audit entry. the id is assigned here.
func (cs *CityStore) LogRequest(entry datastructure.RequestLog) error {
	return cs.db.Update(func(tx *bbolt.Tx) error {
		requests := tx.Bucket([]byte(BBOLTDB_REQUEST_BUCKET))
		seq, err := requests.NextSequence()
		if err != nil {
			return err
		}
		entry.ID = seq

		entryBytes, err := msgpack.Marshal(entry)
		if err != nil {
			return err
		}
		return requests.Put(itob(seq), entryBytes)
	})
}

// ListRequests returns up to limit audit entries, most recent first.
func (cs *CityStore) ListRequests(limit int) ([]datastructure.RequestLog, error) {
	entries := []datastructure.RequestLog{}
	err := cs.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(BBOLTDB_REQUEST_BUCKET)).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var entry datastructure.RequestLog
			if err := msgpack.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode request %d: %w", btoi(k), err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// itob big endian so cursor order is id order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
