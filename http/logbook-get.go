package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/programme-lv/hwlog/httpjson"
	"github.com/programme-lv/hwlog/logbook"
	"github.com/programme-lv/hwlog/srvcerror"
)

const errCodeInvalidQuery = "invalid_query"

func newErrInvalidQuery(param string) *srvcerror.Error {
	return srvcerror.New(errCodeInvalidQuery, "invalid query parameter "+param).
		SetHttpStatusCode(http.StatusBadRequest)
}

func (httpserver *HttpServer) getLogbook(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	q := r.URL.Query()
	req := logbook.Request{
		ClassCode:  chi.URLParam(r, "classCode"),
		StartDate:  q.Get("start_date"),
		StartTime:  q.Get("start_time"),
		EndDate:    q.Get("end_date"),
		EndTime:    q.Get("end_time"),
		MinEntries: 1,
	}
	if v := q.Get("multiple_entries"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httpjson.HandleError(logger, w, newErrInvalidQuery("multiple_entries"))
			return
		}
		req.AllowMultiple = b
	}
	if v := q.Get("min_entries"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpjson.HandleError(logger, w, newErrInvalidQuery("min_entries"))
			return
		}
		req.MinEntries = n
	}

	report, err := httpserver.logbooks.Build(r.Context(), req)
	if err != nil {
		httpjson.HandleError(logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapLogbook(report))
}

func (httpserver *HttpServer) getClass(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	classCode := chi.URLParam(r, "classCode")
	class, err := httpserver.classes.FindByCode(r.Context(), classCode)
	if err != nil {
		httpjson.HandleError(logger, w, srvcerror.ErrInternalSE().SetDebug(err))
		return
	}
	if class == nil {
		httpjson.WriteErrorJson(w, "class code "+classCode+" not found",
			http.StatusNotFound, logbook.ErrCodeClassNotFound)
		return
	}

	httpjson.WriteSuccessJson(w, mapClass(class))
}
