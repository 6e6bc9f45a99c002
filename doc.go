/*
Package reg provides a service registry and resolver.

Services are registered against explicit, comparable keys with a [Lifetime]
policy, and resolved through the [Registry] or through a [Scope] begun for a
unit of work. Factories request their own dependencies from the [Resolver]
they are handed, so constructor-style injection falls out of the resolution
recursion.

Example:

	r := reg.NewRegistry()

	err := r.Register("store", func(ctx context.Context, _ reg.Resolver) (any, error) {
		return store.Open(ctx)
	}, reg.Singleton)

	err = r.Register("session", func(ctx context.Context, rv reg.Resolver) (any, error) {
		s, err := reg.Resolve[*store.Store](ctx, rv, "store")
		if err != nil {
			return nil, err
		}
		return session.New(s), nil
	}, reg.Scoped)

	// One scope per unit of work.
	scope, err := r.BeginScope()
	defer scope.End(ctx)

	sess, err := reg.Resolve[*session.Session](ctx, scope, "session")

Note that a Singleton service holds whatever dependency instances were live
when it was first constructed. A Singleton that depends on a Scoped or
Transient service captures that instance forever, so keep Singleton
dependencies at least as long-lived as the Singleton itself.
*/
package reg
