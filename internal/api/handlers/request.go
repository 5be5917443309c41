package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var validate = validator.New()

// decodeRequest reads a JSON body into v and checks its validate tags.
// The returned error message is safe to show to clients.
func decodeRequest(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return validateRequest(v)
}

// decodeOptionalRequest is decodeRequest for endpoints whose body may be
// absent. An empty body, chunked or not, leaves v at its zero value.
func decodeOptionalRequest(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid request body")
	}
	return validateRequest(v)
}

func validateRequest(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", e.Field(), e.Tag()))
			}
			return fmt.Errorf("invalid fields: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func dateParam(value string) (datatypes.Date, error) {
	date, err := domain.ParseMenuDate(value)
	if err != nil {
		return datatypes.Date{}, domain.ErrInvalidMenuDate
	}
	return date, nil
}
