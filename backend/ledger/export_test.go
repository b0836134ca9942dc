package ledger

func Rebind(s *Store, q string) string { return s.rebind(q) }
func SQLiteDSN(dsn string) string { return sqliteDSN(dsn) }
