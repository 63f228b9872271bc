// Entrypoint: reads configuration, initializes dependencies and starts the
// server; API registration lives in internal/api so the surface can grow.
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"zoning-api/internal/api"
	"zoning-api/internal/logger"
	"zoning-api/internal/metrics"
	"zoning-api/internal/middleware"
	"zoning-api/internal/migrate"
	"zoning-api/internal/rules"
	"zoning-api/internal/seed"
	"zoning-api/internal/store"
	"zoning-api/internal/streets"
	"zoning-api/internal/supabase"
	"zoning-api/internal/utils"
	"zoning-api/internal/version"
	"zoning-api/internal/zonemap"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)
	ui := os.Getenv("UI_DIST")
	if ui == "" {
		ui = filepath.Join("ui", "dist")
	}
	l.Debug("config_ui_dir", "dir", ui)

	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	l.Info("db_open_ok")
	if err := db.Ping(); err != nil {
		l.Error("db_ping_error", "err", err)
	} else {
		l.Info("db_ping_ok")
	}
	st := store.AttachDB(db)
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	// Seed the rule book from YAML at startup when asked; upserts only, so an
	// already populated database is left consistent.
	seedPath := os.Getenv("RULES_SEED_PATH")
	if seedPath == "" {
		seedPath = filepath.Join("data", "zone_rules.yaml")
	}
	l.Debug("config_seed_path", "path", seedPath)
	if os.Getenv("IMPORT_RULES_TO_DB") == "true" {
		if _, err := os.Stat(seedPath); err == nil {
			l.Info("seed_found", "path", seedPath)
			go func() {
				if err := seed.Run(context.Background(), st, seedPath); err != nil {
					l.Error("seed_error", "err", err)
				}
			}()
		} else {
			l.Error("seed_not_found", "path", seedPath)
		}
	} else {
		l.Info("seed_skipped", "reason", "import_disabled")
	}

	// Rule source selection. The database is authoritative by default;
	// RULE_SOURCE=supabase serves straight from the hosted table instead.
	var src rules.Source = st
	if os.Getenv("RULE_SOURCE") == "supabase" {
		sb, err := supabase.NewFromEnv()
		if err != nil {
			l.Error("supabase_config_error", "err", err)
			os.Exit(1)
		}
		src = sb
		l.Info("rule_source", "source", "supabase")
	} else {
		l.Info("rule_source", "source", "postgres")
	}

	// Zone map: loaded once, hot-swapped on demand via the admin endpoint.
	zonePath := os.Getenv("ZONE_GEOJSON")
	if zonePath == "" {
		zonePath = filepath.Join("data", "zoneamento.geojson")
	}
	l.Debug("config_zone_geojson", "path", zonePath)
	zones := zonemap.NewIndex()
	if snap, err := zonemap.LoadSnapshot(zonePath); err != nil {
		l.Error("zonemap_load_error", "path", zonePath, "err", err)
	} else {
		zones.Swap(snap)
		l.Info("zonemap_ready", "zones", len(snap.Zones))
	}

	streetsPath := os.Getenv("STREETS_GEOJSON")
	if streetsPath == "" {
		streetsPath = filepath.Join("data", "ruas.json")
	}
	ways := streets.Load(streetsPath)

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(st, src, rc, zones, ways)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.HandleFunc(apiBase+"/reload-zones", func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if t == "" || t != os.Getenv("ADMIN_TOKEN") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		snap, err := zonemap.LoadSnapshot(zonePath)
		if err != nil {
			l.Error("zonemap_reload_error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		zones.Swap(snap)
		l.Info("zonemap_reloaded", "zones", len(snap.Zones))
		w.WriteHeader(http.StatusNoContent)
	})

	fs := http.FileServer(http.Dir(ui))
	mux.Handle("/", fs)

	// NOTE: expose the API base path to the front end so it is never hardcoded
	mux.HandleFunc("/config.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/javascript; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write([]byte("window.__API_BASE__='" + apiBase + "'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__DATA_SOURCE__='Tabela de zoneamento consolidada'"))
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write([]byte("window.__COMMIT_SHA__='" + version.Commit + "'"))
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler}
	tlsEnable := os.Getenv("TLS_ENABLE")
	if tlsEnable == "" || tlsEnable == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		_ = utils.EnsureSelfSignedCert(certPath, keyPath, "zoning-api.local")
		if os.Getenv("TLS_REDIRECT_ENABLE") == "true" {
			redirAddr := os.Getenv("TLS_REDIRECT_ADDR")
			if redirAddr == "" {
				redirAddr = ":80"
			}
			go func() {
				httpRedir := http.NewServeMux()
				httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
					host := r.Host
					httpsPort := strings.TrimPrefix(addr, ":")
					baseHost := host
					if i := strings.LastIndex(host, ":"); i != -1 {
						baseHost = host[:i]
					}
					targetHost := baseHost
					if httpsPort != "" {
						targetHost = baseHost + ":" + httpsPort
					}
					target := "https://" + targetHost + r.URL.RequestURI()
					http.Redirect(w, r, target, http.StatusMovedPermanently)
					l.Debug("http_redirect", "from", r.Host, "to", target)
				})
				l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+addr)
				_ = http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(httpRedir))
			}()
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		_ = s.ListenAndServeTLS(certPath, keyPath)
		return
	}
	l.Info("listening", "addr", addr)
	_ = s.ListenAndServe()
}
