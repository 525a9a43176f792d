package ingest

// Row maps header names to the trimmed raw value found at the same position.
type Row map[string]string

// Get returns the first non-empty value among name and its fallbacks, in that order.
func (r Row) Get(name string, fallbacks ...string) (string, bool) {
	if v := r[name]; v != "" {
		return v, true
	}
	for _, n := range fallbacks {
		if v := r[n]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Lookup chains used by Extract.
func (r Row) date() (string, bool) { return r.Get("Date", "date") }
func (r Row) closing() (string, bool) { return r.Get("Close", "close") }
func (r Row) symbol() (string, bool) { return r.Get("Symbol", "symbol") }

// Values returns the row's values in header order; absent fields are empty strings.
func (r Row) Values(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = r[h]
	}
	return out
}
