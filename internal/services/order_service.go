package services

import (
	"context"
	"errors"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/events"
	"github.com/franciscosanchezn/trattoria-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const publishTimeout = 5 * time.Second

// Actor is the authenticated user acting on an order
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdministrator() bool {
	return a.Role == models.RoleAdministrator
}

// OrderItem is a requested dish and quantity
type OrderItem struct {
	DishID   uint
	Quantity uint
}

// OrderFilter narrows ListOrders. Zero values disable a filter.
type OrderFilter struct {
	Status   string
	WaiterID uint
	TableID  uint
}

type OrderService interface {
	// CreateOrder opens an order for a free table and marks the table occupied
	CreateOrder(ctx context.Context, actor Actor, tableID uint, items []OrderItem) (*models.Order, error)
	GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	ListWaiterOrders(ctx context.Context, waiterID uint) ([]models.Order, error)
	AddLine(ctx context.Context, actor Actor, orderID uint, item OrderItem) (*models.Order, error)
	RemoveLine(ctx context.Context, actor Actor, orderID, lineID uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uint, status string) (*models.Order, error)
	// CloseOrder closes the order and frees its table
	CloseOrder(ctx context.Context, actor Actor, orderID uint) (*models.Order, error)
}

type orderService struct {
	db        *gorm.DB
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(db *gorm.DB, publisher events.Publisher) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{db: db, publisher: publisher, now: time.Now}
}

func (s *orderService) CreateOrder(ctx context.Context, actor Actor, tableID uint, items []OrderItem) (*models.Order, error) {
	if tableID == 0 {
		return nil, ErrMissingTable
	}
	items, err := mergeItems(items)
	if err != nil {
		return nil, err
	}

	var orderID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findTable(tx, tableID); err != nil {
			return err
		}

		// claim the table; a concurrent order on the same table loses here
		claim := tx.Model(&models.Table{}).
			Where("id = ? AND occupied = ?", tableID, false).
			Update("occupied", true)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return ErrTableOccupied
		}

		if err := ensureDishesOrderable(tx, items); err != nil {
			return err
		}

		order := models.Order{
			TableID:  &tableID,
			WaiterID: &actor.UserID,
			Status:   models.StatusWaiting,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			line := models.OrderLine{OrderID: order.ID, DishID: item.DishID, Quantity: item.Quantity}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":  order.ID,
		"table_id":  tableID,
		"waiter_id": actor.UserID,
		"total":     order.Total,
	}).Info("Order created")

	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !models.IsValidStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}

	query := withOrderDetails(s.db.WithContext(ctx))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.WaiterID != 0 {
		query = query.Where("waiter_id = ?", filter.WaiterID)
	}
	if filter.TableID != 0 {
		query = query.Where("table_id = ?", filter.TableID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) ListWaiterOrders(ctx context.Context, waiterID uint) ([]models.Order, error) {
	return s.ListOrders(ctx, OrderFilter{WaiterID: waiterID})
}

func (s *orderService) AddLine(ctx context.Context, actor Actor, orderID uint, item OrderItem) (*models.Order, error) {
	if item.Quantity == 0 {
		return nil, ErrInvalidQuantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpenOrder(tx, actor, orderID); err != nil {
			return err
		}
		if err := ensureDishesOrderable(tx, []OrderItem{item}); err != nil {
			return err
		}

		// the same dish twice on one order becomes a bigger quantity
		var line models.OrderLine
		err := tx.Where("order_id = ? AND dish_id = ?", orderID, item.DishID).First(&line).Error
		switch {
		case err == nil:
			line.Quantity += item.Quantity
			return tx.Save(&line).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.OrderLine{OrderID: orderID, DishID: item.DishID, Quantity: item.Quantity}
			return tx.Create(&line).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, orderID)
}

func (s *orderService) RemoveLine(ctx context.Context, actor Actor, orderID, lineID uint) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpenOrder(tx, actor, orderID); err != nil {
			return err
		}

		var line models.OrderLine
		if err := tx.Where("id = ? AND order_id = ?", lineID, orderID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderLineNotFound
			}
			return err
		}
		return tx.Delete(&line).Error
	})
	if err != nil {
		return nil, err
	}
	return s.loadOrder(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, orderID uint, status string) (*models.Order, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if status == models.StatusClosed {
		return s.CloseOrder(ctx, actor, orderID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOpenOrder(tx, actor, orderID)
		if err != nil {
			return err
		}
		if !models.CanTransition(order.Status, status) {
			return ErrInvalidTransition
		}
		return tx.Model(order).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

func (s *orderService) CloseOrder(ctx context.Context, actor Actor, orderID uint) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOpenOrder(tx, actor, orderID)
		if err != nil {
			return err
		}

		closedAt := s.now().UTC()
		if err := tx.Model(order).Updates(map[string]interface{}{
			"status":    models.StatusClosed,
			"closed_at": closedAt,
		}).Error; err != nil {
			return err
		}

		if order.TableID != nil {
			if err := tx.Model(&models.Table{}).Where("id = ?", *order.TableID).Update("occupied", false).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.Total,
	}).Info("Order closed")

	s.publish(ctx, events.OrderClosed, order)
	return order, nil
}

func (s *orderService) loadOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// publish sends the event after the transaction committed. Broker failures
// are logged and never undo the order change.
func (s *orderService) publish(ctx context.Context, eventType string, order *models.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, newOrderEvent(eventType, order, s.now())); err != nil {
		log.WithFields(log.Fields{
			"event":    eventType,
			"order_id": order.ID,
			"error":    err,
		}).Warn("Failed to publish order event")
	}
}

func newOrderEvent(eventType string, order *models.Order, at time.Time) events.OrderEvent {
	event := events.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		Status:     order.Status,
		Total:      order.Total,
		OccurredAt: at.UTC(),
	}
	if order.Table != nil {
		event.TableNumber = order.Table.Number
	}
	if order.WaiterID != nil {
		event.WaiterID = *order.WaiterID
	}
	for _, line := range order.Lines {
		l := events.Line{DishID: line.DishID, Quantity: line.Quantity}
		if line.Dish != nil {
			l.DishName = line.Dish.Name
		}
		event.Lines = append(event.Lines, l)
	}
	return event
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Table").
		Preload("Waiter").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Lines.Dish")
}

// lockOpenOrder loads an order the actor may change and that is not closed yet
// lockOpenOrder takes a row lock on the order so concurrent line changes and
// closing serialize. sqlite ignores the clause and serializes on its single
// connection.
func lockOpenOrder(tx *gorm.DB, actor Actor, id uint) (*models.Order, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := authorize(actor, &order); err != nil {
		return nil, err
	}
	if !order.IsOpen() {
		return nil, ErrOrderClosed
	}
	return &order, nil
}

func authorize(actor Actor, order *models.Order) error {
	if actor.IsAdministrator() {
		return nil
	}
	if order.WaiterID != nil && *order.WaiterID == actor.UserID {
		return nil
	}
	return ErrForbidden
}

// mergeItems validates a dish selection and folds repeated dishes into one
// item, keeping the order in which dishes first appeared.
func mergeItems(items []OrderItem) ([]OrderItem, error) {
	if len(items) == 0 {
		return nil, ErrMissingDishes
	}

	merged := make([]OrderItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.DishID == 0 {
			return nil, ErrMissingDishes
		}
		if item.Quantity == 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[item.DishID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.DishID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func ensureDishesOrderable(tx *gorm.DB, items []OrderItem) error {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.DishID)
	}

	var dishes []models.Dish
	if err := tx.Select("id", "available").Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return err
	}
	if len(dishes) != len(ids) {
		return ErrDishNotFound
	}
	for _, dish := range dishes {
		if !dish.Available {
			return ErrDishUnavailable
		}
	}
	return nil
}
