package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ecommerce-backend/internal/domain"
	rabbit "ecommerce-backend/internal/infra/rabbitmq"
	"ecommerce-backend/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type CreateOrderItemInput struct {
	ProductID uint64
	Quantity  uint32
}

type CreateOrderInput struct {
	UserID          *uint64
	CustomerEmail   string
	CustomerPhone   string
	Status          domain.OrderStatus
	PaymentMethod   string
	TaxAmount       decimal.Decimal
	ShippingCost    decimal.Decimal
	DiscountAmount  decimal.Decimal
	ShippingAddress domain.Address
	BillingAddress  domain.Address
	CustomerNotes   string
	Items           []CreateOrderItemInput
}

// OrderService is the order state engine. Every status change runs as
// one transaction: load the previously persisted row under lock, derive
// timestamps, persist, append the audit row, reconcile inventory. The
// derivation step always completes before the history/inventory step
// reads the order, so audit rows see the timestamp-complete row.
type OrderService struct {
	tx          repository.Transactor
	repo        repository.OrderRepository
	products    repository.ProductRepository
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client
}

func NewOrderService(tx repository.Transactor, r repository.OrderRepository, p repository.ProductRepository, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		tx:        tx,
		repo:      r,
		products:  p,
		publisher: pub,
	}
}

func (s *OrderService) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}

	var order *domain.Order
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ids := make([]uint64, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint64]domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		subtotal := decimal.Zero
		items := make([]domain.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, ok := byID[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %d", ErrProductNotFound, it.ProductID)
			}
			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			items = append(items, domain.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSKU:  p.SKU,
				UnitPrice:   p.Price,
				Quantity:    it.Quantity,
				TotalPrice:  lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		order = &domain.Order{
			OrderNumber:     newOrderNumber(),
			UserID:          in.UserID,
			CustomerEmail:   in.CustomerEmail,
			CustomerPhone:   in.CustomerPhone,
			Status:          status,
			PaymentStatus:   domain.PaymentPending,
			PaymentMethod:   in.PaymentMethod,
			Subtotal:        subtotal,
			TaxAmount:       in.TaxAmount,
			ShippingCost:    in.ShippingCost,
			DiscountAmount:  in.DiscountAmount,
			TotalAmount:     subtotal.Add(in.TaxAmount).Add(in.ShippingCost).Sub(in.DiscountAmount),
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
			CustomerNotes:   in.CustomerNotes,
			Items:           items,
		}

		if err := s.repo.Create(ctx, order); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			order.OrderNumber = newOrderNumber()
			if err := s.repo.Create(ctx, order); err != nil {
				return err
			}
		}

		// Creation event: no old status.
		if err := s.repo.AppendHistory(ctx, &domain.OrderStatusHistory{
			OrderID:   order.ID,
			NewStatus: order.Status,
			Note:      "Order created",
			CreatedBy: in.UserID,
		}); err != nil {
			return err
		}

		// An order created straight into fulfillment reserves stock
		// immediately; "" sits outside every status set.
		return s.reconcileInventory(ctx, "", order.Status, order.Items)
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	go s.publishOrderCreated(context.Background(), order)

	return order, nil
}

// ApplyTransition moves an order to a new status/payment-status pair and
// applies every side effect as one atomic unit.
func (s *OrderService) ApplyTransition(ctx context.Context, orderID uint64, newStatus domain.OrderStatus, newPayment domain.PaymentStatus, actor *uint64) (*domain.Order, error) {
	var (
		updated   *domain.Order
		oldStatus domain.OrderStatus
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		oldStatus = order.Status
		oldPayment := order.PaymentStatus

		order.Status = newStatus
		order.PaymentStatus = newPayment
		domain.StampTransitionTimes(oldStatus, oldPayment, order, time.Now())

		if err := s.repo.Update(ctx, order); err != nil {
			return err
		}

		if oldStatus != newStatus {
			prev := oldStatus
			if err := s.repo.AppendHistory(ctx, &domain.OrderStatusHistory{
				OrderID:   order.ID,
				OldStatus: &prev,
				NewStatus: newStatus,
				Note:      fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
				CreatedBy: actor,
			}); err != nil {
				return err
			}
		}

		if err := s.reconcileInventory(ctx, oldStatus, newStatus, order.Items); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	s.invalidateOrderCache(ctx, orderID)
	go s.publishStatusChanged(context.Background(), updated, oldStatus)

	return updated, nil
}

func (s *OrderService) reconcileInventory(ctx context.Context, old, new domain.OrderStatus, items []domain.OrderItem) error {
	dir := domain.InventoryDirection(old, new)
	if dir == 0 {
		return nil
	}
	for _, item := range items {
		if err := s.products.AdjustTrackedQuantity(ctx, item.ProductID, int64(dir)*int64(item.Quantity)); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) GetOrdersByUser(ctx context.Context, userID uint64) ([]domain.Order, error) {
	return s.repo.FindByUser(ctx, userID)
}

func (s *OrderService) GetHistory(ctx context.Context, orderID uint64) ([]domain.OrderStatusHistory, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.History(ctx, orderID)
}

func (s *OrderService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	cacheKey := fmt.Sprintf("product:%d", id)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var p domain.Product
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(p); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, time.Minute)
		}
	}

	return p, nil
}

func (s *OrderService) WarmupProductCache(ctx context.Context, productIds []uint64) error {
	if s.redisClient == nil {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range productIds {
		id := id
		g.Go(func() error {
			p, err := s.products.FindByID(ctx, id)
			if err != nil {
				log.Printf("Failed to warm up cache for product %d: %v", id, err)
				return nil
			}
			if p != nil {
				cacheKey := fmt.Sprintf("product:%d", id)
				if data, err := json.Marshal(p); err == nil {
					s.redisClient.Set(ctx, cacheKey, data, 5*time.Minute)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *OrderService) invalidateOrderCache(ctx context.Context, orderID uint64) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(ctx, fmt.Sprintf("orders:%d", orderID))
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	evt := domain.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount.StringFixed(2),
		CreatedAt:   order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, "order.created", evt); err != nil {
		log.Printf("Failed to publish order.created for %d: %v", order.ID, err)
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.OrderStatus) {
	evt := domain.OrderStatusChangedEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		OldStatus:     oldStatus,
		NewStatus:     order.Status,
		PaymentStatus: order.PaymentStatus,
		ChangedAt:     time.Now(),
	}
	if err := s.publisher.Publish(ctx, "order.status_changed", evt); err != nil {
		log.Printf("Failed to publish order.status_changed for %d: %v", order.ID, err)
	}
}

// 48 bits of the UUID; collisions are unrealistic but the unique index
// reports them and create retries once with a fresh number.
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
