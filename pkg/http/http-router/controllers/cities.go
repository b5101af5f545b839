package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	helper "github.com/lintang-b-s/nearest-cities/pkg/http/http-router/router-helper"
	"github.com/lintang-b-s/nearest-cities/pkg/http/usecases"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type cityAPI struct {
	cityService CityService
	log         *zap.Logger
	validate    *validator.Validate
	trans       ut.Translator
}

func New(cityService CityService, log *zap.Logger) *cityAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &cityAPI{
		cityService: cityService,
		log:         log,
		validate:    validate,
		trans:       trans,
	}
}

func (api *cityAPI) Routes(group *helper.RouteGroup) {
	group.POST("/cities", api.addCity)
	group.GET("/cities", api.listCities)
	group.GET("/cities/:name", api.getCity)
	group.DELETE("/cities/:name", api.deleteCity)
	group.GET("/nearest-cities", api.nearestCities)
	group.GET("/requests", api.requestHistory)
}

// addCityRequest model info
//
//	@Description	request body for adding a city.
type addCityRequest struct {
	Name string   `json:"name" validate:"required,max=128"`
	Lat  *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon  *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

// addCity godoc
// @Summary		add a city with its coordinates. names are unique ignoring case and surrounding spaces.
// @Tags			cities
// @Param			body	body	addCityRequest	true
// @Accept			application/json
// @Produce		application/json
// @Router			/api/cities [post]
// @Success		201	{object}	datastructure.City
// @Failure		400	{object}	errorResponse
// @Failure		409	{object}	errorResponse
func (api *cityAPI) addCity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var request addCityRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(request.Name) == "" {
		api.BadRequestResponse(w, r, errors.New("validation error: [name is a required field]"))
		return
	}

	city, err := api.cityService.AddCity(request.Name, *request.Lat, *request.Lon)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", "/api/cities/"+url.PathEscape(city.Name))

	if err := api.writeJSON(w, http.StatusCreated, envelope{"data": city}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

type listCitiesRequest struct {
	Skip  int `validate:"min=0"`
	Limit int `validate:"min=1,max=100"`
}

// listCities godoc
// @Summary		list cities ordered by id.
// @Tags			cities
// @Param			skip	query	int	false	"cities to skip"
// @Param			limit	query	int	false	"page size, 1..100"
// @Produce		application/json
// @Router			/api/cities [get]
// @Success		200	{array}	datastructure.City
// @Failure		400	{object}	errorResponse
func (api *cityAPI) listCities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	qs := r.URL.Query()
	var (
		request listCitiesRequest
		err     error
	)
	if request.Skip, err = readInt(qs, "skip", 0); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.Limit, err = readInt(qs, "limit", usecases.DefaultListLimit); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	cities, err := api.cityService.ListCities(request.Skip, request.Limit)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": cities}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *cityAPI) getCity(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	city, err := api.cityService.GetCity(p.ByName("name"))
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": city}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// deleteCity godoc
// @Summary		delete a city by name. the deletion is written to the request log.
// @Tags			cities
// @Param			name	path	string	true	"city name"
// @Produce		application/json
// @Router			/api/cities/{name} [delete]
// @Success		200
// @Failure		404	{object}	errorResponse
func (api *cityAPI) deleteCity(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	city, err := api.cityService.DeleteCity(p.ByName("name"))
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}

	detail := map[string]string{"detail": fmt.Sprintf("City %s deleted and logged", city.Name)}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": detail}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

type nearestCitiesRequest struct {
	CityName *string  `validate:"omitempty,max=128"`
	Lat      *float64 `validate:"omitempty,min=-90,max=90"`
	Lon      *float64 `validate:"omitempty,min=-180,max=180"`
}

// nearestCitiesResponse model info
//
//	@Description	the two nearest cities by great-circle distance.
type nearestCitiesResponse struct {
	Data []datastructure.RankedNeighbor `json:"data"`
}

// nearestCities godoc
// @Summary		find the two stored cities nearest to a stored city or to a coordinate pair.
// @Tags			cities
// @Param			city_name	query	string	false	"stored city name"
// @Param			lat	query	number	false	"latitude"
// @Param			lon	query	number	false	"longitude"
// @Produce		application/json
// @Router			/api/nearest-cities [get]
// @Success		200	{object}	nearestCitiesResponse
// @Failure		400	{object}	errorResponse
// @Failure		404	{object}	errorResponse
func (api *cityAPI) nearestCities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	qs := r.URL.Query()
	var (
		request nearestCitiesRequest
		err     error
	)
	if name := qs.Get("city_name"); name != "" {
		request.CityName = &name
	}
	if request.Lat, err = readFloat(qs, "lat"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.Lon, err = readFloat(qs, "lon"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	neighbors, err := api.cityService.NearestCities(usecases.NearestQuery{
		CityName: request.CityName,
		Lat:      request.Lat,
		Lon:      request.Lon,
	})
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": neighbors}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

type requestHistoryRequest struct {
	Limit int `validate:"min=1,max=1000"`
}

func (api *cityAPI) requestHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		request requestHistoryRequest
		err     error
	)
	if request.Limit, err = readInt(r.URL.Query(), "limit", usecases.DefaultHistoryLimit); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	history, err := api.cityService.RequestHistory(request.Limit)
	if err != nil {
		api.ServiceErrorResponse(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": history}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *cityAPI) validateStruct(s any) error {
	err := api.validate.Struct(s)
	if err == nil {
		return nil
	}

	vv := translateError(err, api.trans)
	vvString := []string{}
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
