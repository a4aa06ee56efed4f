package gen

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /alerts)
	GetAlerts(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (POST /sync-team)
	PostSyncTeam(w http.ResponseWriter, r *http.Request)
	// (GET /teams)
	GetTeams(w http.ResponseWriter, r *http.Request)
	// (POST /teams)
	PostTeams(w http.ResponseWriter, r *http.Request)
	// (DELETE /teams/{teamId})
	DeleteTeamsTeamId(w http.ResponseWriter, r *http.Request, teamId string)
	// (GET /teams/{teamId})
	GetTeamsTeamId(w http.ResponseWriter, r *http.Request, teamId string)
	// (POST /teams/{teamId}/alerts/{alertType}/ack)
	PostTeamsTeamIdAlertsAlertTypeAck(w http.ResponseWriter, r *http.Request, teamId string, alertType string)
	// (GET /teams/{teamId}/history)
	GetTeamsTeamIdHistory(w http.ResponseWriter, r *http.Request, teamId string, params GetTeamsTeamIdHistoryParams)
	// (GET /teams/{teamId}/members)
	GetTeamsTeamIdMembers(w http.ResponseWriter, r *http.Request, teamId string)
	// (GET /update-scheduler-status)
	GetUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request)
	// (POST /update-scheduler-status)
	PostUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request)
}

// Unimplemented server implementation that returns http.StatusNotImplemented for each endpoint.
type Unimplemented struct{}

func (_ Unimplemented) GetAlerts(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) PostSyncTeam(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetTeams(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) PostTeams(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) DeleteTeamsTeamId(w http.ResponseWriter, r *http.Request, teamId string) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetTeamsTeamId(w http.ResponseWriter, r *http.Request, teamId string) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) PostTeamsTeamIdAlertsAlertTypeAck(w http.ResponseWriter, r *http.Request, teamId string, alertType string) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetTeamsTeamIdHistory(w http.ResponseWriter, r *http.Request, teamId string, params GetTeamsTeamIdHistoryParams) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetTeamsTeamIdMembers(w http.ResponseWriter, r *http.Request, teamId string) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) PostUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) GetAlerts(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetAlerts)
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetHealth)
}

func (siw *ServerInterfaceWrapper) PostSyncTeam(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.PostSyncTeam)
}

func (siw *ServerInterfaceWrapper) GetTeams(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetTeams)
}

func (siw *ServerInterfaceWrapper) PostTeams(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.PostTeams)
}

func (siw *ServerInterfaceWrapper) DeleteTeamsTeamId(w http.ResponseWriter, r *http.Request) {
	teamId := chi.URLParam(r, "teamId")
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteTeamsTeamId(w, r, teamId)
	})
}

func (siw *ServerInterfaceWrapper) GetTeamsTeamId(w http.ResponseWriter, r *http.Request) {
	teamId := chi.URLParam(r, "teamId")
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTeamsTeamId(w, r, teamId)
	})
}

func (siw *ServerInterfaceWrapper) PostTeamsTeamIdAlertsAlertTypeAck(w http.ResponseWriter, r *http.Request) {
	teamId := chi.URLParam(r, "teamId")
	alertType := chi.URLParam(r, "alertType")
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.PostTeamsTeamIdAlertsAlertTypeAck(w, r, teamId, alertType)
	})
}

func (siw *ServerInterfaceWrapper) GetTeamsTeamIdHistory(w http.ResponseWriter, r *http.Request) {
	teamId := chi.URLParam(r, "teamId")

	var params GetTeamsTeamIdHistoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTeamsTeamIdHistory(w, r, teamId, params)
	})
}

func (siw *ServerInterfaceWrapper) GetTeamsTeamIdMembers(w http.ResponseWriter, r *http.Request) {
	teamId := chi.URLParam(r, "teamId")
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTeamsTeamIdMembers(w, r, teamId)
	})
}

func (siw *ServerInterfaceWrapper) GetUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetUpdateSchedulerStatus)
}

func (siw *ServerInterfaceWrapper) PostUpdateSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.PostUpdateSchedulerStatus)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/alerts", wrapper.GetAlerts)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/sync-team", wrapper.PostSyncTeam)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/teams", wrapper.GetTeams)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/teams", wrapper.PostTeams)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/teams/{teamId}", wrapper.DeleteTeamsTeamId)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/teams/{teamId}", wrapper.GetTeamsTeamId)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/teams/{teamId}/alerts/{alertType}/ack", wrapper.PostTeamsTeamIdAlertsAlertTypeAck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/teams/{teamId}/history", wrapper.GetTeamsTeamIdHistory)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/teams/{teamId}/members", wrapper.GetTeamsTeamIdMembers)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/update-scheduler-status", wrapper.GetUpdateSchedulerStatus)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/update-scheduler-status", wrapper.PostUpdateSchedulerStatus)
	})

	return r
}
