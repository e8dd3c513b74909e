package repository

import "context"

// トランザクション内で使うリポジトリ一式
type TxRepos interface {
	Cakes() CakeRepository
	Carts() CartRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Inventory() InventoryRepository
	AuditLogs() AuditLogRepository
}

// Usecaseから begin/commit/rollback を隠す。
// fn がエラーを返したら rollback、nil なら commit。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
