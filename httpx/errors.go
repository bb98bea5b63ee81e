package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/promo-forms/errs"
	"github.com/mbolis/promo-forms/log"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// Error answers with the status matching the kind of err. Validation
// failures carry their details back to the client; storage failures are
// logged and reported as an opaque 500.
func Error(w http.ResponseWriter, r *http.Request, code string, err error) {
	var (
		validation *errs.ValidationError
		notFound   *errs.NotFoundError
		conflict   *errs.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		log.Debugf("%s: %s", code, err)
		fields := validation.Fields
		if fields == nil {
			fields = []string{}
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]any{
			"error":  validation.Msg,
			"fields": fields,
		})
	case errors.As(err, &notFound):
		LogNotFound(w, code, notFound)
	case errors.As(err, &conflict):
		LogStatusMsg(w, http.StatusConflict, log.DebugLevel, code, "%s", conflict.Msg)
	default:
		LogInternalError(w, code, err)
	}
}
