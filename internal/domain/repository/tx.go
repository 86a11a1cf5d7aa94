package repository

import "context"

// TxRunner ejecuta fn con repositorios atados a una misma transacción.
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(categories CategoryRepository, products ProductRepository) error) error
}
