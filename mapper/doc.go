// Package mapper copies values between struct types through routines that
// are compiled once per (Source, Target) pair.
//
// A Registry owns the routines. Configure plans the pair and every pair it
// reaches (nested structs, slice elements, map keys and values), emits a
// verified program for each and publishes them together. Map runs the
// program; it does no name lookups of its own.
//
//	r := mapper.New()
//
//	err := mapper.Configure(r, func(c *mapper.Config[store.Order, warehouse.Order]) {
//		c.MapProperty(
//			func(s *store.Order) any { return &s.TotalCents },
//			func(t *warehouse.Order) any { return &t.TotalAmount })
//		c.Ignore(func(t *warehouse.Order) any { return &t.Currency })
//	})
//
//	order, err := mapper.Map[store.Order, warehouse.Order](r, src)
//
// Target fields take their value from the source field or getter method of
// the same name unless a rule says otherwise. Rules come in three layers,
// later layers winning: same-named same-typed fields, YAML override files
// (see options.WithOverrideFiles) and the configurators passed to
// Configure.
//
// Only the first Configure call of a pair has an effect; later calls return
// its result. Routines are immutable once published and safe for
// concurrent use.
package mapper
