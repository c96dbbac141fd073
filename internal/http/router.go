package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Appointments *AppointmentHandler
	Catalog      *CatalogHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Appointments != nil {
		mux.HandleFunc("/appointments", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Appointments.List(w, r)
			case http.MethodPost:
				cfg.Appointments.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/appointments/conflicts", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Appointments.Conflicts(w, r)
		})
		mux.HandleFunc("/appointments/reference/", func(w http.ResponseWriter, r *http.Request) {
			code := strings.TrimPrefix(r.URL.Path, "/appointments/reference/")
			if code == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Appointments.GetByReference(w, r, code)
		})
		mux.HandleFunc("/appointments/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/appointments/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if id, ok := strings.CutSuffix(rest, "/status"); ok && id != "" {
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Appointments.UpdateStatus(w, r, id)
				return
			}
			if strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Appointments.Get(w, r, rest)
			case http.MethodPatch:
				cfg.Appointments.Update(w, r, rest)
			case http.MethodDelete:
				cfg.Appointments.Delete(w, r, rest)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
			}
		})
		mux.HandleFunc("/recurrence/preview", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Appointments.PreviewRecurrence(w, r)
		})
	}

	if cfg.Catalog != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.ListUsers(w, r)
			case http.MethodPost:
				cfg.Catalog.CreateUser(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/users/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.GetUser(w, r, id)
			case http.MethodDelete:
				cfg.Catalog.DeleteUser(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})

		mux.HandleFunc("/services", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.ListServices(w, r)
			case http.MethodPost:
				cfg.Catalog.CreateService(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/services/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/services/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.GetService(w, r, id)
			case http.MethodDelete:
				cfg.Catalog.DeleteService(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})

		mux.HandleFunc("/resources", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.ListResources(w, r)
			case http.MethodPost:
				cfg.Catalog.CreateResource(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
	}

	if cfg.Appointments != nil {
		mux.HandleFunc("/resources/available", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Appointments.AvailableResources(w, r)
		})
	}

	if cfg.Catalog != nil {
		mux.HandleFunc("/resources/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/resources/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if id, ok := strings.CutSuffix(rest, "/deactivate"); ok && id != "" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Catalog.DeactivateResource(w, r, id)
				return
			}
			if id, ok := strings.CutSuffix(rest, "/unavailability"); ok && id != "" {
				switch r.Method {
				case http.MethodGet:
					cfg.Catalog.ListUnavailability(w, r, id)
				case http.MethodPut:
					cfg.Catalog.SetUnavailability(w, r, id)
				case http.MethodDelete:
					cfg.Catalog.ClearUnavailability(w, r, id)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
				return
			}
			if strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Catalog.GetResource(w, r, rest)
			case http.MethodDelete:
				cfg.Catalog.DeleteResource(w, r, rest)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
