package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

type envelope map[string]any

func (api *cityAPI) writeJSON(w http.ResponseWriter, status int, data envelope,
	headers http.Header) error {
	if err := writeJSON(w, status, data, headers); err != nil {
		api.log.Error("failed to write JSON response", zap.Error(err))
		return err
	}
	return nil
}

// writeJSON marshals data structure to encoded JSON response.
func writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// readInt returns def when key is absent from the query string.
func readInt(qs url.Values, key string, def int) (int, error) {
	s := qs.Get(key)
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("%s must be an integer value", key)
	}
	return i, nil
}

// readFloat returns nil when key is absent from the query string.
func readFloat(qs url.Values, key string) (*float64, error) {
	s := qs.Get(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}
