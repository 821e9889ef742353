package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
	"github.com/speccom/fieldproof-backend/pkg/types"
)

// proofPhotoFile pulls the "photo" part out of a multipart upload,
// enforcing the configured size cap before any bytes reach the
// object store.
func proofPhotoFile(r *http.Request, maxUploadMB int) (multipart.File, *multipart.FileHeader, error) {
	limit := int64(maxUploadMB) << 20
	r.Body = http.MaxBytesReader(nil, r.Body, limit+1)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload")
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo file required")
	}
	if header.Size > limit {
		file.Close()
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "photo exceeds the upload size limit")
	}
	return file, header, nil
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.FormValue(key)))
	return err == nil && v
}

// formTime parses an optional RFC 3339 form field. A blank field is
// not an error; a malformed one is.
func formTime(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be RFC 3339").
			WithDetails(map[string]string{"field": key, "value": raw})
	}
	return &ts, nil
}

// formGeoPoint reads the paired gps_lat/gps_lng form fields. Both
// must be present for a point to be returned.
func formGeoPoint(r *http.Request) (*types.GeoPoint, error) {
	latRaw := strings.TrimSpace(r.FormValue("gps_lat"))
	lngRaw := strings.TrimSpace(r.FormValue("gps_lng"))
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lngRaw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gps_lat and gps_lng must be supplied together")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gps_lat must be a number")
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gps_lng must be a number")
	}
	return &types.GeoPoint{Lat: lat, Lng: lng}, nil
}

func formFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a number")
	}
	return &v, nil
}
