package dataset

import "strings"

// typeKind buckets backend column types for declared-type derivation.
type typeKind int

const (
	kindText typeKind = iota
	kindNumeric
	kindTemporal
)

// declared maps a kind to the declared type consumed by filter.Classify.
func (k typeKind) declared() string {
	switch k {
	case kindNumeric:
		return "numeric"
	case kindTemporal:
		return "datetime"
	default:
		return "categorical"
	}
}

// duckdbNumericTypes covers DuckDB numeric type names after
// normalization.
var duckdbNumericTypes = map[string]bool{
	"TINYINT": true, "SMALLINT": true, "INTEGER": true, "BIGINT": true,
	"UTINYINT": true, "USMALLINT": true, "UINTEGER": true, "UBIGINT": true,
	"HUGEINT": true, "UHUGEINT": true,
	"FLOAT": true, "DOUBLE": true, "DECIMAL": true,
}

// duckdbTemporalTypes covers DuckDB date/time type names after
// normalization.
var duckdbTemporalTypes = map[string]bool{
	"DATE": true, "TIME": true, "TIMETZ": true,
	"TIMESTAMP": true, "TIMESTAMPTZ": true,
	"TIMESTAMP_S": true, "TIMESTAMP_MS": true, "TIMESTAMP_NS": true,
}

// duckdbTypeAliases maps full SQL type names and aliases DuckDB may
// report to their canonical short form.
var duckdbTypeAliases = map[string]string{
	"TIMESTAMP WITH TIME ZONE":    "TIMESTAMPTZ",
	"TIMESTAMP_TZ":                "TIMESTAMPTZ",
	"TIME WITH TIME ZONE":         "TIMETZ",
	"TIME_TZ":                     "TIMETZ",
	"TIMESTAMP_SEC":               "TIMESTAMP_S",
	"TIMESTAMP WITHOUT TIME ZONE": "TIMESTAMP",
	"INT":                         "INTEGER",
	"INT4":                        "INTEGER",
	"INT8":                        "BIGINT",
	"INT2":                        "SMALLINT",
	"INT1":                        "TINYINT",
	"INT128":                      "HUGEINT",
	"UINT128":                     "UHUGEINT",
	"FLOAT4":                      "FLOAT",
	"FLOAT8":                      "DOUBLE",
	"REAL":                        "FLOAT",
	"NUMERIC":                     "DECIMAL",
	"STRING":                      "VARCHAR",
	"TEXT":                        "VARCHAR",
	"BOOL":                        "BOOLEAN",
}

// duckdbTypeKind buckets a DuckDB column type name. Parameterized types
// such as DECIMAL(18,3) are matched on their base name.
func duckdbTypeKind(columnType string) typeKind {
	name := strings.ToUpper(strings.TrimSpace(columnType))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if canonical, ok := duckdbTypeAliases[name]; ok {
		name = canonical
	}
	switch {
	case duckdbNumericTypes[name]:
		return kindNumeric
	case duckdbTemporalTypes[name]:
		return kindTemporal
	default:
		return kindText
	}
}

// postgresTypeKind buckets a PostgreSQL data_type from
// information_schema.columns.
func postgresTypeKind(dataType string) typeKind {
	name := strings.ToLower(strings.TrimSpace(dataType))
	switch name {
	case "smallint", "integer", "bigint", "decimal", "numeric",
		"real", "double precision", "smallserial", "serial", "bigserial", "money":
		return kindNumeric
	case "date", "time without time zone", "time with time zone",
		"timestamp without time zone", "timestamp with time zone", "interval":
		return kindTemporal
	default:
		return kindText
	}
}
