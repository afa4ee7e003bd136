package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/pagination"
)

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func page[T any](items []T, params *pagination.PaginationParams) []T {
	if params == nil {
		return items
	}
	params.Validate()
	start, end := params.Window(len(items))
	return items[start:end]
}

type productRepository struct{ s *Store }

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.s.update(ctx, func(d *document) error {
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		if find(d.Products, func(p *entity.Product) bool { return p.ID == product.ID }) >= 0 {
			return fmt.Errorf("product %s: %w", product.ID, ErrDuplicateKey)
		}
		stamp(&product.CreatedAt, &product.UpdatedAt, r.s.now())
		c, err := clone(*product)
		if err != nil {
			return err
		}
		d.Products = append(d.Products, c)
		return nil
	})
}

func (r *productRepository) get(ctx context.Context, match func(*entity.Product) bool) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.Products, match)
		if i < 0 {
			return nil
		}
		c, err := clone(d.Products[i])
		out = &c
		return err
	})
	return out, err
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.get(ctx, func(p *entity.Product) bool { return p.ID == id })
}

// GetByIDForUpdate needs no row lock: a transaction already holds the whole store
func (r *productRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.get(ctx, func(p *entity.Product) bool { return p.Code == code })
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	products := []entity.Product{}
	err := r.s.view(ctx, func(d *document) error {
		for _, p := range d.Products {
			if want[p.ID] {
				products = append(products, p)
			}
		}
		var err error
		products, err = cloneAll(products)
		return err
	})
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.Products, func(p *entity.Product) bool { return p.ID == product.ID })
		if i < 0 {
			return fmt.Errorf("product %s: %w", product.ID, ErrNotFound)
		}
		product.Stock = d.Products[i].Stock
		product.CreatedAt = d.Products[i].CreatedAt
		product.UpdatedAt = r.s.now()
		c, err := clone(*product)
		if err != nil {
			return err
		}
		d.Products[i] = c
		return nil
	})
}

func (r *productRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.Products, func(p *entity.Product) bool { return p.ID == id })
		if i < 0 {
			return fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		d.Products[i].Stock = stock
		d.Products[i].UpdatedAt = r.s.now()
		return nil
	})
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var (
		out   []entity.Product
		total int64
	)
	err := r.s.view(ctx, func(d *document) error {
		var matched []entity.Product
		for _, p := range d.Products {
			if params.Search != "" && !containsFold(p.Name, params.Search) && !containsFold(p.Code, params.Search) {
				continue
			}
			if params.ProductType != nil && p.ProductType != *params.ProductType {
				continue
			}
			matched = append(matched, p)
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
		total = int64(len(matched))
		var err error
		out, err = cloneAll(page(matched, params.Pagination))
		return err
	})
	return out, total, err
}

type orderRepository struct{ s *Store }

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.s.update(ctx, func(d *document) error {
		if order.ID == uuid.Nil {
			order.ID = uuid.New()
		}
		if find(d.Orders, func(o *entity.Order) bool { return o.OrderNumber == order.OrderNumber || o.ID == order.ID }) >= 0 {
			return fmt.Errorf("order %s: %w", order.OrderNumber, ErrDuplicateKey)
		}
		stamp(&order.CreatedAt, &order.UpdatedAt, r.s.now())
		c, err := clone(*order)
		if err != nil {
			return err
		}
		d.Orders = append(d.Orders, c)
		return nil
	})
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.Orders, func(o *entity.Order) bool { return o.ID == id })
		if i < 0 {
			return nil
		}
		c, err := clone(d.Orders[i])
		out = &c
		return err
	})
	return out, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.Orders, func(o *entity.Order) bool { return o.ID == order.ID })
		if i < 0 {
			return fmt.Errorf("order %s: %w", order.ID, ErrNotFound)
		}
		order.UpdatedAt = r.s.now()
		c, err := clone(*order)
		if err != nil {
			return err
		}
		d.Orders[i] = c
		return nil
	})
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.Orders, func(o *entity.Order) bool { return o.ID == id })
		if i >= 0 {
			d.Orders = append(d.Orders[:i], d.Orders[i+1:]...)
		}
		return nil
	})
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var (
		out   []entity.Order
		total int64
	)
	err := r.s.view(ctx, func(d *document) error {
		var matched []entity.Order
		for _, o := range d.Orders {
			if params.Search != "" && !containsFold(o.OrderNumber, params.Search) && !containsFold(o.CustomerName, params.Search) {
				continue
			}
			if params.Status != nil && o.Status != *params.Status {
				continue
			}
			if params.CustomerID != nil && (o.CustomerID == nil || *o.CustomerID != *params.CustomerID) {
				continue
			}
			if params.StartDate != nil && o.Date.Before(*params.StartDate) {
				continue
			}
			if params.EndDate != nil && o.Date.After(*params.EndDate) {
				continue
			}
			matched = append(matched, o)
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
		total = int64(len(matched))
		var err error
		out, err = cloneAll(page(matched, params.Pagination))
		return err
	})
	return out, total, err
}

func (r *orderRepository) LastNumberByPrefix(ctx context.Context, prefix string) (string, error) {
	var last string
	err := r.s.view(ctx, func(d *document) error {
		for _, o := range d.Orders {
			if strings.HasPrefix(o.OrderNumber, prefix) && o.OrderNumber > last {
				last = o.OrderNumber
			}
		}
		return nil
	})
	return last, err
}

type kitchenOrderRepository struct{ s *Store }

func (r *kitchenOrderRepository) Create(ctx context.Context, ko *entity.KitchenOrder) error {
	return r.s.update(ctx, func(d *document) error {
		if find(d.KitchenOrders, func(k *entity.KitchenOrder) bool { return k.ID == ko.ID }) >= 0 {
			return fmt.Errorf("kitchen order %s: %w", ko.ID, ErrDuplicateKey)
		}
		stamp(&ko.CreatedAt, &ko.UpdatedAt, r.s.now())
		c, err := clone(*ko)
		if err != nil {
			return err
		}
		d.KitchenOrders = append(d.KitchenOrders, c)
		return nil
	})
}

func (r *kitchenOrderRepository) GetByID(ctx context.Context, id string) (*entity.KitchenOrder, error) {
	var out *entity.KitchenOrder
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.KitchenOrders, func(k *entity.KitchenOrder) bool { return k.ID == id })
		if i < 0 {
			return nil
		}
		c, err := clone(d.KitchenOrders[i])
		out = &c
		return err
	})
	return out, err
}

func (r *kitchenOrderRepository) Update(ctx context.Context, ko *entity.KitchenOrder) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.KitchenOrders, func(k *entity.KitchenOrder) bool { return k.ID == ko.ID })
		if i < 0 {
			return fmt.Errorf("kitchen order %s: %w", ko.ID, ErrNotFound)
		}
		c, err := clone(*ko)
		if err != nil {
			return err
		}
		d.KitchenOrders[i] = c
		return nil
	})
}

func (r *kitchenOrderRepository) Delete(ctx context.Context, id string) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.KitchenOrders, func(k *entity.KitchenOrder) bool { return k.ID == id })
		if i >= 0 {
			d.KitchenOrders = append(d.KitchenOrders[:i], d.KitchenOrders[i+1:]...)
		}
		return nil
	})
}

func (r *kitchenOrderRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.KitchenOrder, error) {
	return r.List(ctx, &domainRepo.KitchenOrderFilterParams{OrderID: &orderID})
}

func (r *kitchenOrderRepository) List(ctx context.Context, params *domainRepo.KitchenOrderFilterParams) ([]entity.KitchenOrder, error) {
	out := []entity.KitchenOrder{}
	err := r.s.view(ctx, func(d *document) error {
		for _, k := range d.KitchenOrders {
			if params.Status != nil && k.Status != *params.Status {
				continue
			}
			if params.OrderID != nil && k.OrderID != *params.OrderID {
				continue
			}
			out = append(out, k)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		var err error
		out, err = cloneAll(out)
		return err
	})
	return out, err
}

func (r *kitchenOrderRepository) DeleteByStatus(ctx context.Context, status enum.KitchenStatus) (int64, error) {
	var removed int64
	err := r.s.update(ctx, func(d *document) error {
		kept := d.KitchenOrders[:0]
		for _, k := range d.KitchenOrders {
			if k.Status == status {
				removed++
				continue
			}
			kept = append(kept, k)
		}
		d.KitchenOrders = kept
		return nil
	})
	return removed, err
}

type stockReceiptRepository struct{ s *Store }

func (r *stockReceiptRepository) assignIDs(receipt *entity.StockReceipt) {
	if receipt.ID == uuid.Nil {
		receipt.ID = uuid.New()
	}
	for i := range receipt.Items {
		if receipt.Items[i].ID == uuid.Nil {
			receipt.Items[i].ID = uuid.New()
		}
		receipt.Items[i].ReceiptID = receipt.ID
	}
}

func (r *stockReceiptRepository) Create(ctx context.Context, receipt *entity.StockReceipt) error {
	return r.s.update(ctx, func(d *document) error {
		list := d.receipts(receipt.Kind)
		if find(*list, func(x *entity.StockReceipt) bool { return x.ReceiptNumber == receipt.ReceiptNumber }) >= 0 {
			return fmt.Errorf("receipt %s: %w", receipt.ReceiptNumber, ErrDuplicateKey)
		}
		r.assignIDs(receipt)
		stamp(&receipt.CreatedAt, &receipt.UpdatedAt, r.s.now())
		c, err := clone(*receipt)
		if err != nil {
			return err
		}
		*list = append(*list, c)
		return nil
	})
}

func (r *stockReceiptRepository) GetByID(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) (*entity.StockReceipt, error) {
	var out *entity.StockReceipt
	err := r.s.view(ctx, func(d *document) error {
		list := *d.receipts(kind)
		i := find(list, func(x *entity.StockReceipt) bool { return x.ID == id })
		if i < 0 {
			return nil
		}
		c, err := clone(list[i])
		out = &c
		return err
	})
	return out, err
}

func (r *stockReceiptRepository) Update(ctx context.Context, receipt *entity.StockReceipt) error {
	return r.s.update(ctx, func(d *document) error {
		list := d.receipts(receipt.Kind)
		i := find(*list, func(x *entity.StockReceipt) bool { return x.ID == receipt.ID })
		if i < 0 {
			return fmt.Errorf("receipt %s: %w", receipt.ID, ErrNotFound)
		}
		r.assignIDs(receipt)
		receipt.UpdatedAt = r.s.now()
		c, err := clone(*receipt)
		if err != nil {
			return err
		}
		(*list)[i] = c
		return nil
	})
}

func (r *stockReceiptRepository) Delete(ctx context.Context, kind enum.ReceiptKind, id uuid.UUID) error {
	return r.s.update(ctx, func(d *document) error {
		list := d.receipts(kind)
		i := find(*list, func(x *entity.StockReceipt) bool { return x.ID == id })
		if i >= 0 {
			*list = append((*list)[:i], (*list)[i+1:]...)
		}
		return nil
	})
}

func (r *stockReceiptRepository) List(ctx context.Context, params *domainRepo.StockReceiptFilterParams) ([]entity.StockReceipt, int64, error) {
	var (
		out   []entity.StockReceipt
		total int64
	)
	err := r.s.view(ctx, func(d *document) error {
		var matched []entity.StockReceipt
		for _, x := range *d.receipts(params.Kind) {
			if params.StartDate != nil && x.Date.Before(*params.StartDate) {
				continue
			}
			if params.EndDate != nil && x.Date.After(*params.EndDate) {
				continue
			}
			matched = append(matched, x)
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })
		total = int64(len(matched))
		var err error
		out, err = cloneAll(page(matched, params.Pagination))
		return err
	})
	return out, total, err
}

func (r *stockReceiptRepository) LastNumberByPrefix(ctx context.Context, kind enum.ReceiptKind, prefix string) (string, error) {
	var last string
	err := r.s.view(ctx, func(d *document) error {
		for _, x := range *d.receipts(kind) {
			if strings.HasPrefix(x.ReceiptNumber, prefix) && x.ReceiptNumber > last {
				last = x.ReceiptNumber
			}
		}
		return nil
	})
	return last, err
}

type packageRepository struct{ s *Store }

func (r *packageRepository) Create(ctx context.Context, pkg *entity.CustomerTreatmentPackage) error {
	return r.s.update(ctx, func(d *document) error {
		if pkg.ID == uuid.Nil {
			pkg.ID = uuid.New()
		}
		stamp(&pkg.CreatedAt, &pkg.UpdatedAt, r.s.now())
		c, err := clone(*pkg)
		if err != nil {
			return err
		}
		d.CustomerTreatmentPackages = append(d.CustomerTreatmentPackages, c)
		return nil
	})
}

func (r *packageRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error) {
	var out *entity.CustomerTreatmentPackage
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.CustomerTreatmentPackages, func(p *entity.CustomerTreatmentPackage) bool { return p.ID == id })
		if i < 0 {
			return nil
		}
		c, err := clone(d.CustomerTreatmentPackages[i])
		out = &c
		return err
	})
	return out, err
}

func (r *packageRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.CustomerTreatmentPackage, error) {
	return r.GetByID(ctx, id)
}

func (r *packageRepository) Update(ctx context.Context, pkg *entity.CustomerTreatmentPackage) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.CustomerTreatmentPackages, func(p *entity.CustomerTreatmentPackage) bool { return p.ID == pkg.ID })
		if i < 0 {
			return fmt.Errorf("package %s: %w", pkg.ID, ErrNotFound)
		}
		pkg.UpdatedAt = r.s.now()
		c, err := clone(*pkg)
		if err != nil {
			return err
		}
		d.CustomerTreatmentPackages[i] = c
		return nil
	})
}

func (r *packageRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]entity.CustomerTreatmentPackage, error) {
	out := []entity.CustomerTreatmentPackage{}
	err := r.s.view(ctx, func(d *document) error {
		for _, p := range d.CustomerTreatmentPackages {
			if p.CustomerID != customerID {
				continue
			}
			if activeOnly && !(p.IsActive && p.RemainingSessions > 0) {
				continue
			}
			out = append(out, p)
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].PurchasedAt.Before(out[j].PurchasedAt) })
		var err error
		out, err = cloneAll(out)
		return err
	})
	return out, err
}

type tableRepository struct{ s *Store }

func (r *tableRepository) Create(ctx context.Context, table *entity.Table) error {
	return r.s.update(ctx, func(d *document) error {
		if table.ID == uuid.Nil {
			table.ID = uuid.New()
		}
		stamp(&table.CreatedAt, &table.UpdatedAt, r.s.now())
		c, err := clone(*table)
		if err != nil {
			return err
		}
		d.Tables = append(d.Tables, c)
		return nil
	})
}

func (r *tableRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Table, error) {
	var out *entity.Table
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.Tables, func(t *entity.Table) bool { return t.ID == id })
		if i < 0 {
			return nil
		}
		c, err := clone(d.Tables[i])
		out = &c
		return err
	})
	return out, err
}

func (r *tableRepository) Update(ctx context.Context, table *entity.Table) error {
	return r.s.update(ctx, func(d *document) error {
		i := find(d.Tables, func(t *entity.Table) bool { return t.ID == table.ID })
		if i < 0 {
			return fmt.Errorf("table %s: %w", table.ID, ErrNotFound)
		}
		table.UpdatedAt = r.s.now()
		c, err := clone(*table)
		if err != nil {
			return err
		}
		d.Tables[i] = c
		return nil
	})
}

func (r *tableRepository) List(ctx context.Context) ([]entity.Table, error) {
	out := []entity.Table{}
	err := r.s.view(ctx, func(d *document) error {
		out = append(out, d.Tables...)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		var err error
		out, err = cloneAll(out)
		return err
	})
	return out, err
}

type customerRepository struct{ s *Store }

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.s.update(ctx, func(d *document) error {
		if customer.ID == uuid.Nil {
			customer.ID = uuid.New()
		}
		if find(d.Customers, func(c *entity.Customer) bool { return c.Phone == customer.Phone }) >= 0 {
			return fmt.Errorf("customer phone %s: %w", customer.Phone, ErrDuplicateKey)
		}
		stamp(&customer.CreatedAt, &customer.UpdatedAt, r.s.now())
		c, err := clone(*customer)
		if err != nil {
			return err
		}
		d.Customers = append(d.Customers, c)
		return nil
	})
}

func (r *customerRepository) get(ctx context.Context, match func(*entity.Customer) bool) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.Customers, match)
		if i < 0 {
			return nil
		}
		c, err := clone(d.Customers[i])
		out = &c
		return err
	})
	return out, err
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	return r.get(ctx, func(c *entity.Customer) bool { return c.ID == id })
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	return r.get(ctx, func(c *entity.Customer) bool { return c.Phone == phone })
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var (
		out   []entity.Customer
		total int64
	)
	err := r.s.view(ctx, func(d *document) error {
		var matched []entity.Customer
		for _, c := range d.Customers {
			if search != "" && !containsFold(c.Name, search) && !containsFold(c.Phone, search) {
				continue
			}
			matched = append(matched, c)
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
		total = int64(len(matched))
		var err error
		out, err = cloneAll(page(matched, params))
		return err
	})
	return out, total, err
}

type idempotencyRepository struct{ s *Store }

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, subject uuid.UUID) (*entity.IdempotencyKey, error) {
	var out *entity.IdempotencyKey
	err := r.s.view(ctx, func(d *document) error {
		i := find(d.IdempotencyKeys, func(k *entity.IdempotencyKey) bool { return k.Key == key && k.Subject == subject })
		if i < 0 {
			return nil
		}
		c := d.IdempotencyKeys[i]
		out = &c
		return nil
	})
	return out, err
}

func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.s.update(ctx, func(d *document) error {
		if ikey.CreatedAt.IsZero() {
			ikey.CreatedAt = r.s.now()
		}
		if i := find(d.IdempotencyKeys, func(k *entity.IdempotencyKey) bool { return k.Key == ikey.Key && k.Subject == ikey.Subject }); i >= 0 {
			ikey.ID = d.IdempotencyKeys[i].ID
			d.IdempotencyKeys[i] = *ikey
			return nil
		}
		if ikey.ID == uuid.Nil {
			ikey.ID = uuid.New()
		}
		d.IdempotencyKeys = append(d.IdempotencyKeys, *ikey)
		return nil
	})
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	err := r.s.update(ctx, func(d *document) error {
		kept := d.IdempotencyKeys[:0]
		for _, k := range d.IdempotencyKeys {
			if k.IsExpired(now) {
				removed++
				continue
			}
			kept = append(kept, k)
		}
		d.IdempotencyKeys = kept
		return nil
	})
	return removed, err
}
