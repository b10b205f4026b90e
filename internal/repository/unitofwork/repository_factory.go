package unitofwork

import "context"

// RepositoryFactory hands out a fresh UnitOfWork per request. Services hold
// the factory instead of repositories so that multi-table writes (thread plus
// chat binding, review plus thread update) share one transaction.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
