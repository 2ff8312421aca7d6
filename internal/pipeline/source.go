package pipeline

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	d "github.com/invertedv/panelfe"
	"github.com/invertedv/panelfe/internal/config"
	"github.com/invertedv/panelfe/mem"
	_ "github.com/jackc/pgx/stdlib"
	"go.uber.org/zap"
)

// Load reads the panel described by src, keeping cols (all columns if empty).
func Load(src config.SourceConfig, cols []string, logger *zap.Logger) (*mem.DF, error) {
	var (
		data *mem.DF
		e    error
	)

	switch src.Kind {
	case "csv":
		data, e = loadFile(src.Path, cols)
	case "postgres", "clickhouse":
		data, e = loadDB(src, cols)
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}

	if e != nil {
		return nil, fmt.Errorf("load %s: %w", src.Kind, e)
	}

	logger.Info("loaded data",
		zap.String("source", data.Source()),
		zap.Int("rows", data.RowCount()),
		zap.Strings("columns", data.ColumnNames()))

	return data, nil
}

func loadFile(path string, cols []string) (*mem.DF, error) {
	var (
		f *d.Files
		e error
	)
	if f, e = d.NewFiles(d.FileFieldNames(cols...)); e != nil {
		return nil, e
	}

	if e = f.Open(path); e != nil {
		if errors.Is(e, fs.ErrNotExist) {
			return nil, fmt.Errorf("panel file %s not found, supply it or set source.path (ABWAGE_SOURCE_PATH): %w", path, e)
		}

		return nil, e
	}

	return mem.FileLoad(f)
}

func loadDB(src config.SourceConfig, cols []string) (*mem.DF, error) {
	var (
		db *sql.DB
		e  error
	)

	if src.Kind == "clickhouse" {
		db, e = newConnectCH(src.Host, src.User, src.Password, src.DB)
	} else {
		db, e = newConnectPG(src.Host, src.User, src.Password, src.DB)
	}

	if e != nil {
		return nil, e
	}

	var dialect *d.Dialect
	if dialect, e = d.NewDialect(src.Kind, db); e != nil {
		_ = db.Close()
		return nil, e
	}
	defer func() { _ = dialect.Close() }()

	var data *mem.DF
	if data, e = mem.DBLoad(src.Query, dialect); e != nil {
		return nil, e
	}

	if len(cols) == 0 {
		return data, nil
	}

	return data.KeepColumns(cols...)
}

func newConnectCH(host, user, password, dbName string) (*sql.DB, error) {
	if dbName == "" {
		dbName = "default"
	}

	db := clickhouse.OpenDB(
		&clickhouse.Options{
			Addr: []string{host + ":9000"},
			Auth: clickhouse.Auth{
				Database: dbName,
				Username: user,
				Password: password,
			},
			DialTimeout: 300 * time.Second,
			Compression: &clickhouse.Compression{
				Method: clickhouse.CompressionLZ4,
				Level:  0,
			},
		})

	if e := db.Ping(); e != nil {
		_ = db.Close()
		return nil, e
	}

	return db, nil
}

func newConnectPG(host, user, password, dbName string) (*sql.DB, error) {
	connectionStr := fmt.Sprintf("postgres://%s:%s@%s:5432/%s", user, password, host, dbName)
	var (
		db *sql.DB
		e  error
	)
	if db, e = sql.Open("pgx", connectionStr); e != nil {
		return nil, e
	}

	if e := db.Ping(); e != nil {
		_ = db.Close()
		return nil, e
	}

	return db, nil
}
