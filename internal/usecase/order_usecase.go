package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"restaurant/internal/domain/model"
	repo "restaurant/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const deliveryAddressMaxLen = 200

type OrderUsecase struct {
	tx         repo.TransactionManager
	orders     repo.OrderRepository
	strict     bool
	maxRetries int
	logger     *slog.Logger
}

// 注文の運用設定
type OrderOptions struct {
	//trueなら状態遷移表に従う
	StrictStatus bool
	//version競合時の試行回数
	MaxRetries int
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, opts OrderOptions, logger *slog.Logger) *OrderUsecase {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderUsecase{
		tx:         tx,
		orders:     orders,
		strict:     opts.StrictStatus,
		maxRetries: opts.MaxRetries,
		logger:     logger,
	}
}

type OrderItemInput struct {
	DishID              int64   `json:"dish_id"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions *string `json:"special_instructions"`
}

type CreateOrderInput struct {
	CustomerID      int64            `json:"customer_id"`
	DeliveryAddress *string          `json:"delivery_address"`
	Items           []OrderItemInput `json:"items"`
}

// nilは変更しない
type UpdateOrderInput struct {
	Status          *string `json:"status"`
	DeliveryAddress *string `json:"delivery_address"`
}

type OrderItemView struct {
	ID                  int64           `json:"id"`
	DishID              int64           `json:"dish_id"`
	DishName            string          `json:"dish_name"`
	Quantity            int             `json:"quantity"`
	PriceAtOrder        decimal.Decimal `json:"price_at_order"`
	LineTotal           decimal.Decimal `json:"line_total"`
	SpecialInstructions *string         `json:"special_instructions,omitempty"`
}

// 表示用（顧客名と料理名を埋める）
type OrderView struct {
	ID              int64           `json:"id"`
	OrderDate       time.Time       `json:"order_date"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
	DeliveryAddress *string         `json:"delivery_address,omitempty"`
	CustomerID      int64           `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	Items           []OrderItemView `json:"items"`
}

type OrderStatistics struct {
	TotalOrders       int64           `json:"total_orders"`
	PendingOrders     int64           `json:"pending_orders"`
	CompletedOrders   int64           `json:"completed_orders"`
	CancelledOrders   int64           `json:"cancelled_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// 注文作成（明細1件以上、1トランザクション）
func (u *OrderUsecase) Create(ctx context.Context, in CreateOrderInput) (OrderView, error) {
	if in.CustomerID <= 0 {
		return OrderView{}, NewValidationError("customer_id is required")
	}
	if len(in.Items) == 0 {
		return OrderView{}, NewValidationError("order must have at least one item")
	}
	for _, it := range in.Items {
		if err := validateItemInput(it); err != nil {
			return OrderView{}, err
		}
	}
	addr, err := normalizeAddress(in.DeliveryAddress)
	if err != nil {
		return OrderView{}, err
	}

	var out OrderView
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//顧客の存在確認
		customer, err := r.Customers().FindByID(ctx, in.CustomerID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewValidationError(fmt.Sprintf("customer %d not found", in.CustomerID))
		}
		if err != nil {
			return storageError(err)
		}

		now := time.Now()
		o := model.Order{
			CustomerID:      customer.ID,
			Status:          model.OrderStatusPending,
			DeliveryAddress: addr,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		//今の価格と名前をスナップショット
		for _, it := range in.Items {
			dish, err := r.Dishes().FindByID(ctx, it.DishID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewValidationError(fmt.Sprintf("dish %d not found", it.DishID))
			}
			if err != nil {
				return storageError(err)
			}
			if !dish.IsAvailable {
				return NewValidationError(fmt.Sprintf("dish %d is not available", it.DishID))
			}
			o.Items = append(o.Items, newOrderItem(dish, it, now))
		}
		o.RecalculateTotal()

		if err := r.Orders().Create(ctx, &o); err != nil {
			return storageError(err)
		}

		o.Customer = &customer
		out = toOrderView(o)
		return nil
	})
	if err != nil {
		return OrderView{}, passOrStorage(err)
	}
	return out, nil
}

// 明細追加（Pendingのときだけ）
func (u *OrderUsecase) AddItem(ctx context.Context, orderID int64, in OrderItemInput) (OrderView, error) {
	if orderID <= 0 {
		return OrderView{}, NewValidationError("invalid order id")
	}
	if err := validateItemInput(in); err != nil {
		return OrderView{}, err
	}

	var out OrderView
	err := u.withRetry(ctx, "add_item", orderID, func() error {
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, err := findOrder(ctx, r, orderID)
			if err != nil {
				return err
			}
			dish, err := r.Dishes().FindByID(ctx, in.DishID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewNotFoundError("dish not found")
			}
			if err != nil {
				return storageError(err)
			}
			if !o.ItemsMutable() {
				return NewInvalidStateError("items can only be changed while the order is Pending")
			}
			if !dish.IsAvailable {
				return NewValidationError("dish is not available")
			}

			item := newOrderItem(dish, in, time.Now())
			item.OrderID = o.ID
			if err := r.OrderItems().Create(ctx, &item); err != nil {
				return storageError(err)
			}

			if err := saveRecalculated(ctx, r, &o); err != nil {
				return err
			}
			out = toOrderView(o)
			return nil
		})
	})
	if err != nil {
		return OrderView{}, err
	}
	return out, nil
}

// 明細削除（最後の1件は消せない）
func (u *OrderUsecase) RemoveItem(ctx context.Context, orderID int64, itemID int64) (OrderView, error) {
	if orderID <= 0 || itemID <= 0 {
		return OrderView{}, NewValidationError("invalid id")
	}

	var out OrderView
	err := u.withRetry(ctx, "remove_item", orderID, func() error {
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, err := findOrder(ctx, r, orderID)
			if err != nil {
				return err
			}
			if _, ok := o.FindItem(itemID); !ok {
				return NewNotFoundError("order item not found")
			}
			if !o.ItemsMutable() {
				return NewInvalidStateError("items can only be changed while the order is Pending")
			}
			if len(o.Items) <= 1 {
				return NewValidationError("cannot remove the last item; delete the order instead")
			}

			if err := r.OrderItems().Delete(ctx, o.ID, itemID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return NewNotFoundError("order item not found")
				}
				return storageError(err)
			}

			if err := saveRecalculated(ctx, r, &o); err != nil {
				return err
			}
			out = toOrderView(o)
			return nil
		})
	})
	if err != nil {
		return OrderView{}, err
	}
	return out, nil
}

// ステータス・配達先の更新
func (u *OrderUsecase) Update(ctx context.Context, actorUserID int64, orderID int64, in UpdateOrderInput) (OrderView, error) {
	if orderID <= 0 {
		return OrderView{}, NewValidationError("invalid order id")
	}

	var next *model.OrderStatus
	if in.Status != nil {
		st, ok := model.ParseOrderStatus(*in.Status)
		if !ok {
			return OrderView{}, NewValidationError("status must be one of Pending, Preparing, Ready, Delivering, Completed, Cancelled")
		}
		next = &st
	}
	addr, err := normalizeAddress(in.DeliveryAddress)
	if err != nil {
		return OrderView{}, err
	}

	var out OrderView
	err = u.withRetry(ctx, "update", orderID, func() error {
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, err := findOrder(ctx, r, orderID)
			if err != nil {
				return err
			}

			before := o.Status
			changed := false
			if next != nil && *next != o.Status {
				if u.strict && !o.Status.CanTransitionTo(*next) {
					return NewInvalidStateError(fmt.Sprintf("cannot change status from %s to %s", o.Status, *next))
				}
				o.Status = *next
				changed = true
			}
			if in.DeliveryAddress != nil {
				o.DeliveryAddress = addr
				changed = true
			}

			//同じ内容なら何もしない
			if !changed {
				out = toOrderView(o)
				return nil
			}

			o.RecalculateTotal()
			if err := r.Orders().UpdateVersioned(ctx, &o); err != nil {
				return versionOrStorage(err)
			}

			if before != o.Status {
				if err := r.AuditLogs().Append(ctx, model.AuditLog{
					ActorUserID:  actorUserID,
					Action:       model.AuditActionUpdateOrderStatus,
					ResourceType: model.AuditResourceOrder,
					ResourceID:   o.ID,
					BeforeJSON:   auditJSON(map[string]any{"status": before}),
					AfterJSON:    auditJSON(map[string]any{"status": o.Status}),
				}); err != nil {
					return storageError(err)
				}
			}

			out = toOrderView(o)
			return nil
		})
	})
	if err != nil {
		return OrderView{}, err
	}
	return out, nil
}

// 削除はPending / Cancelledのときだけ。明細も一緒に消える
func (u *OrderUsecase) Delete(ctx context.Context, actorUserID int64, orderID int64) error {
	if orderID <= 0 {
		return NewValidationError("invalid order id")
	}

	return u.withRetry(ctx, "delete", orderID, func() error {
		return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			o, err := findOrder(ctx, r, orderID)
			if err != nil {
				return err
			}
			if !o.Deletable() {
				return NewInvalidStateError("only Pending or Cancelled orders can be deleted")
			}

			if err := r.Orders().DeleteVersioned(ctx, o.ID, o.Version); err != nil {
				return versionOrStorage(err)
			}

			if err := r.AuditLogs().Append(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionDeleteOrder,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   o.ID,
				BeforeJSON: auditJSON(map[string]any{
					"status":      o.Status,
					"customer_id": o.CustomerID,
					"total_price": o.ItemsTotal().StringFixed(2),
					"items":       len(o.Items),
				}),
				AfterJSON: "{}",
			}); err != nil {
				return storageError(err)
			}
			return nil
		})
	})
}

func (u *OrderUsecase) Get(ctx context.Context, orderID int64) (OrderView, error) {
	if orderID <= 0 {
		return OrderView{}, NewValidationError("invalid order id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderView{}, NewNotFoundError("order not found")
	}
	if err != nil {
		return OrderView{}, storageError(err)
	}
	return toOrderView(o), nil
}

// 新しい順。statusは大文字小文字を区別しない
func (u *OrderUsecase) List(ctx context.Context, customerID *int64, status string) ([]OrderView, error) {
	f := repo.OrderListFilter{CustomerID: customerID}
	if strings.TrimSpace(status) != "" {
		st, ok := model.ParseOrderStatus(status)
		if !ok {
			return []OrderView{}, NewValidationError("invalid status")
		}
		f.Status = &st
	}

	orders, err := u.orders.List(ctx, f)
	if err != nil {
		return []OrderView{}, storageError(err)
	}
	return toOrderViews(orders), nil
}

// 件数と売上。クエリは並列で投げる
func (u *OrderUsecase) Statistics(ctx context.Context) (OrderStatistics, error) {
	pending := model.OrderStatusPending
	completed := model.OrderStatusCompleted
	cancelled := model.OrderStatusCancelled

	g, gctx := errgroup.WithContext(ctx)
	var stats OrderStatistics
	var sumAll decimal.Decimal

	count := func(dst *int64, st *model.OrderStatus) func() error {
		return func() error {
			n, err := u.orders.Count(gctx, st)
			*dst = n
			return err
		}
	}

	g.Go(count(&stats.TotalOrders, nil))
	g.Go(count(&stats.PendingOrders, &pending))
	g.Go(count(&stats.CompletedOrders, &completed))
	g.Go(count(&stats.CancelledOrders, &cancelled))
	g.Go(func() error {
		s, err := u.orders.SumTotal(gctx, &completed)
		stats.TotalRevenue = s
		return err
	})
	g.Go(func() error {
		s, err := u.orders.SumTotal(gctx, nil)
		sumAll = s
		return err
	})

	if err := g.Wait(); err != nil {
		return OrderStatistics{}, storageError(err)
	}

	stats.TotalRevenue = stats.TotalRevenue.Round(2)
	stats.AverageOrderValue = decimal.Zero
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = sumAll.DivRound(decimal.NewFromInt(stats.TotalOrders), 2)
	}
	return stats, nil
}

// version競合ならTxごとやり直す
func (u *OrderUsecase) withRetry(ctx context.Context, op string, orderID int64, fn func() error) error {
	for attempt := 1; attempt <= u.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			return passOrStorage(err)
		}

		u.logger.WarnContext(ctx, "order version conflict",
			slog.String("op", op),
			slog.Int64("order_id", orderID),
			slog.Int("attempt", attempt),
		)
		if ctx.Err() != nil {
			return storageError(ctx.Err())
		}
	}
	return NewConflictError("order was modified concurrently, please retry")
}

func findOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewNotFoundError("order not found")
	}
	if err != nil {
		return model.Order{}, storageError(err)
	}
	return o, nil
}

// 保存済みの明細から合計を作り直してversion付きで保存
func saveRecalculated(ctx context.Context, r repo.TxRepos, o *model.Order) error {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return storageError(err)
	}
	o.Items = items
	o.RecalculateTotal()

	if err := r.Orders().UpdateVersioned(ctx, o); err != nil {
		return versionOrStorage(err)
	}
	return nil
}

// version競合はリトライさせるのでそのまま返す
func versionOrStorage(err error) error {
	if errors.Is(err, repo.ErrVersionConflict) {
		return err
	}
	return storageError(err)
}

func validateItemInput(it OrderItemInput) error {
	if it.DishID <= 0 {
		return NewValidationError("dish_id is required")
	}
	if !model.ValidQuantity(it.Quantity) {
		return NewValidationError("quantity must be between 1 and 100")
	}
	if it.SpecialInstructions != nil && len(*it.SpecialInstructions) > model.SpecialInstructionsMaxLen {
		return NewValidationError("special_instructions is too long")
	}
	return nil
}

// 空文字はnil扱い
func normalizeAddress(addr *string) (*string, error) {
	if addr == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*addr)
	if s == "" {
		return nil, nil
	}
	if len(s) > deliveryAddressMaxLen {
		return nil, NewValidationError("delivery_address is too long")
	}
	return &s, nil
}

func newOrderItem(dish model.Dish, in OrderItemInput, now time.Time) model.OrderItem {
	var instructions *string
	if in.SpecialInstructions != nil {
		if s := strings.TrimSpace(*in.SpecialInstructions); s != "" {
			instructions = &s
		}
	}
	return model.OrderItem{
		DishID:              dish.ID,
		DishNameSnapshot:    dish.Name,
		Quantity:            in.Quantity,
		PriceAtOrder:        dish.Price,
		SpecialInstructions: instructions,
		CreatedAt:           now,
	}
}

// 合計は常に明細から出す
func toOrderView(o model.Order) OrderView {
	v := OrderView{
		ID:              o.ID,
		OrderDate:       o.CreatedAt,
		TotalPrice:      o.ItemsTotal(),
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
		CustomerID:      o.CustomerID,
		Items:           make([]OrderItemView, 0, len(o.Items)),
	}
	if o.Customer != nil {
		v.CustomerName = o.Customer.FullName
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, OrderItemView{
			ID:                  it.ID,
			DishID:              it.DishID,
			DishName:            it.DishNameSnapshot,
			Quantity:            it.Quantity,
			PriceAtOrder:        it.PriceAtOrder,
			LineTotal:           it.LineTotal(),
			SpecialInstructions: it.SpecialInstructions,
		})
	}
	return v
}

func toOrderViews(orders []model.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	return out
}
