package catalog

// Schemas come from pg_namespace rather than information_schema.schemata,
// which hides schemas the current role does not own.
var postgresQueries = queries{
	schemas: `
		SELECT nspname
		FROM pg_catalog.pg_namespace
		WHERE nspname !~ '^pg_'
		  AND nspname <> 'information_schema'
		ORDER BY nspname`,
	tables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	views: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'VIEW'
		ORDER BY table_name`,
	columns: `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`,
}

// In MySQL a schema is a database. column_type keeps tinyint(1) distinct
// from tinyint, which is how BOOLEAN columns are reported.
var mysqlQueries = queries{
	schemas: `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('mysql', 'information_schema', 'performance_schema', 'sys')
		ORDER BY schema_name`,
	tables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	views: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'VIEW'
		ORDER BY table_name`,
	columns: `
		SELECT column_name, column_type
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`,
}

// DuckDB lists every attached database in information_schema; restrict to
// the one the connection opened.
var duckdbQueries = queries{
	schemas: `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = current_database()
		  AND schema_name NOT IN ('information_schema', 'pg_catalog')
		ORDER BY schema_name`,
	tables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_catalog = current_database()
		  AND table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	views: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_catalog = current_database()
		  AND table_schema = ?
		  AND table_type = 'VIEW'
		ORDER BY table_name`,
	columns: `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_catalog = current_database()
		  AND table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`,
}
