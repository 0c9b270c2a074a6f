package sqlite

// Schema DDL for the query index.
const (
	createRecords = `CREATE TABLE records (
    record_key TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    record_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createAttributes = `CREATE TABLE attributes (
    record_key TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (record_key, name),
    FOREIGN KEY (record_key) REFERENCES records(record_key) ON DELETE CASCADE
);`
)

// Index DDL for the count and find queries.
const (
	idxRecordsKind         = `CREATE INDEX idx_records_kind ON records(kind);`
	idxAttributesNameValue = `CREATE INDEX idx_attributes_name_value ON attributes(name, value);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createRecords,
	createAttributes,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRecordsKind,
	idxAttributesNameValue,
}
