package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/domain/ledger"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/pagination"
	"github.com/sirupsen/logrus"
)

// StockService is the stock ledger. It is the only writer of Product.Stock.
type StockService struct {
	rt          Runtime
	productRepo repository.ProductRepository
	receiptRepo repository.StockReceiptRepository
	log         *logrus.Entry

	// numberMu serializes receipt numbering
	numberMu sync.Mutex
}

// NewStockService creates a new stock ledger service
func NewStockService(
	rt Runtime,
	productRepo repository.ProductRepository,
	receiptRepo repository.StockReceiptRepository,
) *StockService {
	return &StockService{
		rt:          rt,
		productRepo: productRepo,
		receiptRepo: receiptRepo,
		log:         rt.Log.Component("stock"),
	}
}

// StockReceiptLineInput is one requested receipt line
type StockReceiptLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice int64
}

// StockReceiptInput is the body of a receipt create or update
type StockReceiptInput struct {
	Date     *time.Time
	Supplier string
	Reason   string
	Note     string
	Items    []StockReceiptLineInput
}

func (in *StockReceiptInput) validate() error {
	var fieldErrors []apperror.FieldError
	if len(in.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items", Message: "at least one line is required"})
	}
	for i, item := range in.Items {
		if item.ProductID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "is required"})
		}
		if item.Quantity <= 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than zero"})
		}
		if item.UnitPrice < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: fmt.Sprintf("items[%d].unit_price", i), Message: "must not be negative"})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

func reasonFor(kind enum.ReceiptKind, reversal bool) string {
	switch {
	case kind == enum.ReceiptKindIn && !reversal:
		return event.ReasonStockIn
	case kind == enum.ReceiptKindIn:
		return event.ReasonStockInReverse
	case !reversal:
		return event.ReasonStockOut
	default:
		return event.ReasonStockOutReverse
	}
}

// CreateStockInReceipt records goods received and increments stock
func (s *StockService) CreateStockInReceipt(ctx context.Context, in *StockReceiptInput) (*entity.StockReceipt, error) {
	return s.CreateReceipt(ctx, enum.ReceiptKindIn, in)
}

// CreateStockOutReceipt records goods removed and decrements stock
func (s *StockService) CreateStockOutReceipt(ctx context.Context, in *StockReceiptInput) (*entity.StockReceipt, error) {
	return s.CreateReceipt(ctx, enum.ReceiptKindOut, in)
}

// CreateReceipt numbers the receipt and applies its stock effect in one transaction.
// A stock-out receipt is rejected when any product cannot cover its lines.
func (s *StockService) CreateReceipt(ctx context.Context, kind enum.ReceiptKind, in *StockReceiptInput) (*entity.StockReceipt, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.numberMu.Lock()
	defer s.numberMu.Unlock()

	rec := &event.Recorder{}
	var receipt *entity.StockReceipt
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.rt.now()
		built, err := s.buildReceipt(ctx, kind, in, now)
		if err != nil {
			return err
		}

		prefix := ReceiptPrefix(kind, now)
		last, err := s.receiptRepo.LastNumberByPrefix(ctx, kind, prefix)
		if err != nil {
			return fmt.Errorf("last receipt number: %w", err)
		}
		built.ReceiptNumber = ReceiptNumber(kind, now, NextSequence(prefix, last))

		if err := s.applyQuantitiesTx(ctx, rec, built.Quantities(), kind.Sign(), ledger.Strict, reasonFor(kind, false)); err != nil {
			return err
		}
		if err := s.receiptRepo.Create(ctx, built); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		receipt = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithFields(logrus.Fields{"receipt_number": receipt.ReceiptNumber, "lines": len(receipt.Items)}).Info("stock receipt created")
	return receipt, nil
}

// UpdateStockInReceipt reverses the old receipt and applies the new lines
func (s *StockService) UpdateStockInReceipt(ctx context.Context, id uuid.UUID, in *StockReceiptInput) (*entity.StockReceipt, error) {
	return s.UpdateReceipt(ctx, enum.ReceiptKindIn, id, in)
}

// UpdateStockOutReceipt reverses the old receipt and applies the new lines
func (s *StockService) UpdateStockOutReceipt(ctx context.Context, id uuid.UUID, in *StockReceiptInput) (*entity.StockReceipt, error) {
	return s.UpdateReceipt(ctx, enum.ReceiptKindOut, id, in)
}

// UpdateReceipt is two-phase: the old receipt's effect is always reversed in
// full before the new effect is applied, so the result equals delete+create.
func (s *StockService) UpdateReceipt(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID, in *StockReceiptInput) (*entity.StockReceipt, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	rec := &event.Recorder{}
	var receipt *entity.StockReceipt
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		old, err := s.receiptRepo.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if old == nil {
			return apperror.NewNotFoundError("Stock receipt")
		}

		if err := s.applyQuantitiesTx(ctx, rec, old.Quantities(), -kind.Sign(), ledger.FloorAtZero, reasonFor(kind, true)); err != nil {
			return err
		}

		built, err := s.buildReceipt(ctx, kind, in, s.rt.now())
		if err != nil {
			return err
		}
		built.ID = old.ID
		built.ReceiptNumber = old.ReceiptNumber
		built.CreatedAt = old.CreatedAt
		if in.Date == nil {
			built.Date = old.Date
		}

		if err := s.applyQuantitiesTx(ctx, rec, built.Quantities(), kind.Sign(), ledger.Strict, reasonFor(kind, false)); err != nil {
			return err
		}
		if err := s.receiptRepo.Update(ctx, built); err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
		receipt = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rt.publish(rec)
	s.log.WithField("receipt_number", receipt.ReceiptNumber).Info("stock receipt updated")
	return receipt, nil
}

// DeleteStockInReceipt removes the receipt and takes its stock back out, floored at zero
func (s *StockService) DeleteStockInReceipt(ctx context.Context, id uuid.UUID) error {
	return s.DeleteReceipt(ctx, enum.ReceiptKindIn, id)
}

// DeleteStockOutReceipt removes the receipt and returns its stock
func (s *StockService) DeleteStockOutReceipt(ctx context.Context, id uuid.UUID) error {
	return s.DeleteReceipt(ctx, enum.ReceiptKindOut, id)
}

// DeleteReceipt reverses the receipt's effect and removes it
func (s *StockService) DeleteReceipt(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) error {
	rec := &event.Recorder{}
	var number string
	err := s.rt.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		old, err := s.receiptRepo.GetByID(ctx, kind, id)
		if err != nil {
			return err
		}
		if old == nil {
			return apperror.NewNotFoundError("Stock receipt")
		}
		number = old.ReceiptNumber

		if err := s.applyQuantitiesTx(ctx, rec, old.Quantities(), -kind.Sign(), ledger.FloorAtZero, reasonFor(kind, true)); err != nil {
			return err
		}
		return s.receiptRepo.Delete(ctx, kind, id)
	})
	if err != nil {
		return err
	}

	s.rt.publish(rec)
	s.log.WithField("receipt_number", number).Info("stock receipt deleted")
	return nil
}

// GetReceipt retrieves a receipt of the given kind
func (s *StockService) GetReceipt(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) (*entity.StockReceipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Stock receipt")
	}
	return receipt, nil
}

// ListReceipts lists receipts of one kind, newest first
func (s *StockService) ListReceipts(ctx context.Context, params *repository.StockReceiptFilterParams) (*pagination.PaginatedResult[entity.StockReceipt], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	receipts, total, err := s.receiptRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(receipts, pag), nil
}

// buildReceipt resolves product names and computes line totals
func (s *StockService) buildReceipt(ctx context.Context, kind enum.ReceiptKind, in *StockReceiptInput, now time.Time) (*entity.StockReceipt, error) {
	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	receipt := &entity.StockReceipt{
		Kind:     kind,
		Date:     now,
		Supplier: in.Supplier,
		Reason:   in.Reason,
		Note:     in.Note,
		Items:    make([]entity.StockReceiptItem, 0, len(in.Items)),
	}
	if in.Date != nil {
		receipt.Date = *in.Date
	}

	for i, item := range in.Items {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID))
		}
		if !product.StockPolicy().IsTracked() {
			return nil, apperror.NewValidationError([]apperror.FieldError{{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: fmt.Sprintf("%s is a %s and does not track stock", product.Name, product.ProductType),
			}})
		}
		line := entity.StockReceiptItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.UnitPrice * int64(item.Quantity),
		}
		receipt.TotalAmount += line.Total
		receipt.Items = append(receipt.Items, line)
	}
	return receipt, nil
}

// applyQuantitiesTx moves sign*qty for every product, in a stable order
func (s *StockService) applyQuantitiesTx(ctx context.Context, rec *event.Recorder, quantities map[uuid.UUID]int, sign int, bound ledger.Bound, reason string) error {
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if err := s.adjustTx(ctx, rec, id, sign*quantities[id], bound, reason); err != nil {
			return err
		}
	}
	return nil
}

// adjustTx applies one delta to one product. Unlimited kinds are left untouched.
func (s *StockService) adjustTx(ctx context.Context, rec *event.Recorder, productID uuid.UUID, delta int, bound ledger.Bound, reason string) error {
	product, err := s.productRepo.GetByIDForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError(fmt.Sprintf("Product %s", productID))
	}
	current, tracked := product.StockPolicy().Quantity()
	if !tracked {
		return nil
	}

	next, err := ledger.Apply(current, delta, bound)
	var shortfall *ledger.ShortfallError
	if errors.As(err, &shortfall) {
		return apperror.NewInsufficientStockError(apperror.StockShortfall{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			Required:    shortfall.Required,
			Available:   shortfall.Available,
		})
	}
	if err != nil {
		return err
	}
	if next == current {
		return nil
	}

	if err := s.productRepo.SetStock(ctx, product.ID, next); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	rec.Record(event.StockAdjusted, s.rt.now(), event.StockAdjustedPayload{
		ProductID: product.ID,
		Delta:     next - current,
		Reason:    reason,
		Stock:     next,
	})
	return nil
}

// deductForSaleTx takes sold quantities out of stock. Shortfalls reject the sale.
func (s *StockService) deductForSaleTx(ctx context.Context, rec *event.Recorder, items []entity.CartItem) error {
	return s.applyQuantitiesTx(ctx, rec, cartQuantities(items), -1, ledger.Strict, event.ReasonSale)
}

// restockForCancelTx puts the quantities of a cancelled sale back
func (s *StockService) restockForCancelTx(ctx context.Context, rec *event.Recorder, items []entity.CartItem) error {
	return s.applyQuantitiesTx(ctx, rec, cartQuantities(items), 1, ledger.Strict, event.ReasonOrderCancel)
}

func cartQuantities(items []entity.CartItem) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil || item.Quantity <= 0 {
			continue
		}
		out[item.ProductID] += item.Quantity
	}
	return out
}
