package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"totem/config"
	"totem/logger"
)

const redactedSecret = "********"

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler returns the current configuration without secrets.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(config.GetConfig().Redacted())
	}
}

// SaveConfigHandler persists a new configuration. Most settings take effect
// on the next start.
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "Richiesta non valida.", http.StatusBadRequest)
			return
		}

		current := config.GetConfig()
		if newCfg.ClientSecret == redactedSecret {
			newCfg.ClientSecret = current.ClientSecret
		}
		if newCfg.JWTSigningKey == redactedSecret {
			newCfg.JWTSigningKey = current.JWTSigningKey
		}

		if err := validateConfig(newCfg); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			logger.Error("save config", "error", err)
			writeJSONError(w, "Salvataggio della configurazione non riuscito.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Configurazione salvata. Riavviare il servizio per applicarla."})
	}
}

func validateConfig(c config.Config) error {
	switch c.Backend {
	case "", config.BackendLocal, config.BackendGraph:
	default:
		return fmt.Errorf("Backend non valido: %s", c.Backend)
	}
	for cat := range c.Mirrors {
		if !cat.Mirrored() {
			return fmt.Errorf("La categoria %s non ha un file Excel", cat)
		}
	}
	if c.Backend == config.BackendGraph && c.SiteID == "" {
		return errors.New("Site ID obbligatorio con il backend graph")
	}
	if err := validateFolderPath(c.SeedDir); err != nil {
		return err
	}
	if c.Backend != config.BackendGraph {
		if err := validateFolderPath(c.WorkbookDir); err != nil {
			return err
		}
	}
	return nil
}

func validateFolderPath(path string) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("Cartella non trovata: " + path)
		}
		logger.Warn("check folder path", "path", path, "error", err)
		return errors.New("Errore durante la verifica della cartella.")
	}
	if !info.IsDir() {
		return errors.New("Il percorso non è una cartella: " + path)
	}
	return nil
}
