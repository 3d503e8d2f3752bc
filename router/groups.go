package router

// Group creates a new table, sharing the routes with the current one, but registering them
// under the prefix. Middlewares are inherited from a parent, but adding new middlewares in a
// child group doesn't affect the parent.
func (t *Table) Group(prefix string) *Table {
	return &Table{
		root:        t.root,
		prefix:      t.prefix + prefix,
		middlewares: append([]Middleware(nil), t.middlewares...),
	}
}
