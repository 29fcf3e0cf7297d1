package datarecording

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
)

// ClickHouseOptions tells how to reach a ClickHouse server.
type ClickHouseOptions struct {
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
	BatchSize int
}

// ClickHouseWriter writes the rows of a run into a ClickHouse database. It
// serves sweeps where many runs write into one shared server.
type ClickHouseWriter struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	tables     map[string]*table
	entryCount int
}

// NewClickHouseWriter connects to a ClickHouse server.
func NewClickHouseWriter(opts ClickHouseOptions) (*ClickHouseWriter, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = defaultBatchSize
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      30 * time.Second,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("pinging ClickHouse: %w", err)
	}

	return &ClickHouseWriter{
		conn:      conn,
		batchSize: opts.BatchSize,
		tables:    make(map[string]*table),
	}, nil
}

func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	}

	log.Panicf("kind %s cannot be stored", kind)

	return ""
}

// createTableSQL returns the statement that creates a MergeTree table ordered
// by the first column of the entry.
func createTableSQL(tableName string, sampleEntry any) string {
	t := reflect.TypeOf(sampleEntry)
	names := structs.Names(sampleEntry)

	columns := make([]string, 0, len(names))
	for _, n := range names {
		f, _ := t.FieldByName(n)
		columns = append(columns, n+" "+clickHouseType(f.Type.Kind()))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree()\nORDER BY %s",
		tableName, strings.Join(columns, ",\n\t"), names[0])
}

// CreateTable creates a table if it does not exist.
func (w *ClickHouseWriter) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		log.Panic(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.conn.Exec(context.Background(),
		createTableSQL(tableName, sampleEntry))
	if err != nil {
		log.Panicf("failed to create table %s: %v", tableName, err)
	}

	w.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
}

// InsertData buffers an entry. The buffer is flushed when it is full.
func (w *ClickHouseWriter) InsertData(tableName string, entry any) {
	w.mu.Lock()

	t, exists := w.tables[tableName]
	if !exists {
		w.mu.Unlock()
		log.Panicf("table %s does not exist", tableName)
	}

	t.entries = append(t.entries, entry)
	w.entryCount++
	full := w.entryCount >= w.batchSize

	w.mu.Unlock()

	if full {
		w.Flush()
	}
}

// ListTables returns the names of the tables in alphabetical order.
func (w *ClickHouseWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for t := range w.tables {
		tables = append(tables, t)
	}

	sort.Strings(tables)

	return tables
}

// Flush sends each buffered table as one batch.
func (w *ClickHouseWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			log.Panicf("failed to prepare batch for %s: %v", tableName, err)
		}

		for _, entry := range t.entries {
			if err := batch.Append(fieldValues(entry)...); err != nil {
				log.Panicf("failed to append to batch: %v", err)
			}
		}

		if err := batch.Send(); err != nil {
			log.Panicf("failed to send batch: %v", err)
		}

		t.entries = t.entries[:0]
	}

	w.entryCount = 0
}

// Close flushes the buffered entries and closes the connection.
func (w *ClickHouseWriter) Close() error {
	w.Flush()
	return w.conn.Close()
}
