// Package bind decodes and validates JSON request bodies
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "marginalia/internal/platform/errors"
	"marginalia/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	buildOnce sync.Once
	check     *validator.Validate
	messages  ut.Translator
)

// checker builds the shared validator on first use. Validation messages use
// the json tag name so clients see the wire field, not the Go one
func checker() (*validator.Validate, ut.Translator) {
	buildOnce.Do(func() {
		locale := en.New()
		uni := ut.New(locale, locale)
		messages, _ = uni.GetTranslator("en")

		check = validator.New(validator.WithRequiredStructEnabled())
		check.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = en_translations.RegisterDefaultTranslations(check, messages)

		// the stock min/max messages spell out field kinds; keep ours short
		shortTranslation("min", "{0} must be at least {1}")
		shortTranslation("max", "{0} must be at most {1}")
	})
	return check, messages
}

func shortTranslation(tag, tmpl string) {
	_ = check.RegisterTranslation(tag, messages,
		func(t ut.Translator) error { return t.Add(tag, tmpl, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// JSONOptions tunes ParseJSON. Omitting the argument gives a 1MB body cap,
// unknown-field rejection, and a required body on mutating methods
type JSONOptions struct {
	MaxBytes        int64
	DisallowUnknown bool
	AllowEmptyBody  bool
}

func defaults() JSONOptions {
	return JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}
}

// ParseJSON decodes the request body into T and validates it. Decode and
// validation failures come back as project errors so the envelope writer
// can map them straight to HTTP statuses
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaults()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("request body close failed")
		}
	}()

	body := io.Reader(r.Body)
	if !o.AllowEmptyBody {
		// probe a byte so missing bodies fail before the decoder runs
		probe := make([]byte, 1)
		n, _ := r.Body.Read(probe)
		if n == 0 {
			switch r.Method {
			case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
				return zero, nil
			}
			return zero, perr.JSONErrf("empty body")
		}
		body = io.MultiReader(bytes.NewReader(probe[:n]), r.Body)
	}
	if o.MaxBytes > 0 {
		body = io.LimitReader(body, o.MaxBytes)
	}

	dec := json.NewDecoder(body)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if o.AllowEmptyBody && errors.Is(err, io.EOF) {
			return dst, nil
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	v, trans := checker()
	if err := v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			verr := perr.Newf(perr.ErrorCodeValidation, "%s", first.Translate(trans))
			return zero, perr.WithField(verr, first.Field())
		}
		// non-struct targets and other validator internals land here
		logger.Get().Error().Err(err).Msg("validator internal error")
		return zero, perr.JSONErrf("validation error")
	}
	return dst, nil
}
