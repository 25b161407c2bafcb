package geoip

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/seuros/covidboard/internal/logging"
)

// DatabaseFile is the MaxMind database looked up in the data directory.
const DatabaseFile = "GeoLite2-City.mmdb"

// downloadURL is the jsDelivr mirror of the geolite2-city npm package.
var downloadURL = "https://cdn.jsdelivr.net/npm/geolite2-city/GeoLite2-City.mmdb.gz"

var (
	mu     sync.RWMutex
	reader *geoip2.Reader
)

// Init opens the GeoIP database in dataDir. When it is missing and download
// is set, it is fetched first. Lookups degrade to "" on any failure; Init
// only returns errors the caller passed in (a cancelled context).
func Init(ctx context.Context, dataDir string, download bool) error {
	log := logging.With(zap.String("component", "geoip"))
	dbPath := filepath.Join(dataDir, DatabaseFile)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		if !download {
			log.Info("GeoIP database not found, country suggestions disabled", zap.String("path", dbPath))
			return nil
		}
		log.Info("GeoIP database not found, downloading", zap.String("path", dbPath), zap.String("url", downloadURL))
		if err := downloadDatabase(ctx, dbPath); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("GeoIP download failed, country suggestions disabled", zap.Error(err))
			return nil
		}
	}

	r, err := geoip2.Open(dbPath)
	if err != nil {
		log.Warn("could not load GeoIP database", zap.String("path", dbPath), zap.Error(err))
		return nil
	}

	mu.Lock()
	reader = r
	mu.Unlock()

	log.Info("GeoIP database loaded", zap.String("path", dbPath))
	return nil
}

// LookupCountry returns the ISO alpha-2 code for an IP, or "" when unknown.
func LookupCountry(ipStr string) string {
	mu.RLock()
	defer mu.RUnlock()

	if reader == nil {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	record, err := reader.Country(ip)
	if err != nil {
		logging.L().Debug("GeoIP lookup failed", zap.String("ip", ipStr), zap.Error(err))
		return ""
	}
	return record.Country.IsoCode
}

// Close releases the database.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if reader == nil {
		return nil
	}
	err := reader.Close()
	reader = nil
	return err
}

func downloadDatabase(ctx context.Context, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return err
	}

	resp, err := cleanhttp.DefaultClient().Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	// Write next to the target and rename so a partial download never
	// looks like a database.
	tmp, err := os.CreateTemp(filepath.Dir(dbPath), DatabaseFile+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, gz); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dbPath)
}
