package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"totem/identity"
	"totem/logger"
	"totem/model"
	"totem/workbook"
)

const (
	BackendGraph = "graph"
	BackendLocal = "local"
)

type Config struct {
	ListenAddr   string `json:"listenAddr"`
	Backend      string `json:"backend"`
	DatabasePath string `json:"databasePath"`
	SeedDir      string `json:"seedDir,omitempty"`
	WorkbookDir  string `json:"workbookDir"`
	TimeZone     string `json:"timeZone"`

	TenantID     string `json:"tenantId"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret,omitempty"`
	SiteID       string `json:"siteId"`

	ListIDs        map[model.Category]string          `json:"listIds"`
	Mirrors        map[model.Category]workbook.Target `json:"mirrors"`
	DocumentsDrive string                             `json:"documentsDrive,omitempty"`

	FlowURL         string   `json:"flowUrl,omitempty"`
	WebsiteURL      string   `json:"websiteUrl,omitempty"`
	CacheTTLSeconds int      `json:"cacheTtlSeconds"`
	JWTSigningKey   string   `json:"jwtSigningKey,omitempty"`
	AllowAnonymous  bool     `json:"allowAnonymous"`
	GraphScopes     []string `json:"graphScopes,omitempty"`

	Log logger.Config `json:"log"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

// FilePath is where the settings screen persists the configuration.
var FilePath = "./totem_config.json"

func applyDefaults(c *Config) {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Backend == "" {
		c.Backend = BackendLocal
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./totem.db"
	}
	if c.WorkbookDir == "" {
		c.WorkbookDir = "./workbooks"
	}
	if c.TimeZone == "" {
		c.TimeZone = "Europe/Rome"
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 300
	}
	if len(c.GraphScopes) == 0 {
		c.GraphScopes = append([]string(nil), identity.DefaultDelegatedScopes...)
	}
	if c.ListIDs == nil {
		c.ListIDs = map[model.Category]string{}
	}
	if c.Mirrors == nil {
		c.Mirrors = map[model.Category]workbook.Target{}
	}
}

// LoadEnv loads .env into the process environment. A missing file is not an
// error.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadConfig reads the JSON file, then lets environment variables override
// it. The result becomes the current configuration.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	var next Config
	file, err := os.ReadFile(FilePath)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	if err == nil {
		if err := json.Unmarshal(file, &next); err != nil {
			return Config{}, err
		}
	}
	overlayEnv(&next)
	applyDefaults(&next)
	cfg = next
	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)
	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(FilePath, file, 0600); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// env reads a variable, accepting the VITE_ prefix of the kiosk front end's
// .env files.
func env(name string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv("VITE_" + name))
}

func setString(dst *string, names ...string) {
	for _, n := range names {
		if v := env(n); v != "" {
			*dst = v
			return
		}
	}
}

var listEnv = map[model.Category]string{
	model.CategoryForgiati:  "FORGIATI_LIST_ID",
	model.CategoryTubi:      "TUBI_LIST_ID",
	model.CategoryOringHnbr: "ORING_HNBR_LIST_ID",
	model.CategoryOringNbr:  "ORING_NBR_LIST_ID",
	model.CategorySparkGups: "SPARK_GUPS_LIST_ID",
}

var mirrorEnv = map[model.Category]string{
	model.CategoryForgiati:  "FORGIATI",
	model.CategoryTubi:      "TUBI",
	model.CategorySparkGups: "SPARK_GUPS",
}

func overlayEnv(c *Config) {
	setString(&c.ListenAddr, "TOTEM_LISTEN_ADDR")
	setString(&c.Backend, "TOTEM_BACKEND")
	setString(&c.DatabasePath, "TOTEM_DB_PATH")
	setString(&c.SeedDir, "TOTEM_SEED_DIR")
	setString(&c.WorkbookDir, "TOTEM_WORKBOOK_DIR")
	setString(&c.TimeZone, "TIME_ZONE")
	setString(&c.TenantID, "TENANT_ID")
	setString(&c.ClientID, "CLIENT_ID")
	setString(&c.ClientSecret, "CLIENT_SECRET")
	setString(&c.SiteID, "SHAREPOINT_SITE_ID")
	setString(&c.DocumentsDrive, "SP_LIBRARY_NAME")
	setString(&c.FlowURL, "PA_FLOW_URL")
	setString(&c.WebsiteURL, "WEBSITE_URL")
	setString(&c.JWTSigningKey, "JWT_SIGNING_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.Output, "LOG_OUTPUT")
	if v := env("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheTTLSeconds = n
		}
	}
	if v := env("ALLOW_ANONYMOUS"); v != "" {
		c.AllowAnonymous, _ = strconv.ParseBool(v)
	}
	if v := env("GRAPH_SCOPES"); v != "" {
		c.GraphScopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}

	for cat, name := range listEnv {
		if v := env(name); v != "" {
			if c.ListIDs == nil {
				c.ListIDs = map[model.Category]string{}
			}
			c.ListIDs[cat] = v
		}
	}

	folder := env("EXCEL_FOLDER_PATH")
	for cat, prefix := range mirrorEnv {
		t := c.Mirrors[cat]
		setString(&t.DriveName, prefix+"_EXCEL_DRIVE_NAME")
		setString(&t.Table, prefix+"_EXCEL_TABLE")
		if p := env(prefix + "_EXCEL_PATH"); p != "" {
			t.Path = p
		} else if file := env(prefix + "_EXCEL_FILE"); file != "" && folder != "" {
			t.Path = strings.TrimSuffix(folder, "/") + "/" + strings.TrimPrefix(file, "/")
		}
		if t != (workbook.Target{}) {
			if c.Mirrors == nil {
				c.Mirrors = map[model.Category]workbook.Target{}
			}
			c.Mirrors[cat] = t
		}
	}
}

// Redacted is the configuration as shown by the settings screen.
func (c Config) Redacted() Config {
	if c.ClientSecret != "" {
		c.ClientSecret = "********"
	}
	if c.JWTSigningKey != "" {
		c.JWTSigningKey = "********"
	}
	return c
}
