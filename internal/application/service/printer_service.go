package service

import (
	"context"
	"fmt"

	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/event"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/pkg/apperror"
	"github.com/sangkips/pos-api/pkg/printer"
	"github.com/sirupsen/logrus"
)

// PrinterService formats kitchen tickets and sends them to the thermal printer.
type PrinterService struct {
	printer     printer.Printer
	kitchenRepo repository.KitchenOrderRepository
	tableRepo   repository.TableRepository
	printerType string
	title       string
	width       int
	log         *logrus.Entry
}

// PrinterOptions configures ticket layout
type PrinterOptions struct {
	Type  string
	Title string
	Width int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	rt Runtime,
	p printer.Printer,
	kitchenRepo repository.KitchenOrderRepository,
	tableRepo repository.TableRepository,
	opts PrinterOptions,
) *PrinterService {
	if opts.Title == "" {
		opts.Title = "KITCHEN"
	}
	return &PrinterService{
		printer:     p,
		kitchenRepo: kitchenRepo,
		tableRepo:   tableRepo,
		printerType: opts.Type,
		title:       opts.Title,
		width:       opts.Width,
		log:         rt.Log.Component("printer"),
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// BuildTicket composes the printable ticket of a kitchen order. Cancelled lines are left out.
func (s *PrinterService) BuildTicket(ctx context.Context, ko *entity.KitchenOrder) (*entity.KitchenTicket, error) {
	ticket := &entity.KitchenTicket{
		Title:        s.title,
		TicketID:     ko.ID,
		OrderNumber:  ko.OrderNumber,
		NotifiedAt:   ko.CreatedAt.Format("2006-01-02 15:04"),
		IsAdditional: ko.IsAdditionalOrder,
		Lines:        make([]entity.KitchenTicketLine, 0, len(ko.Items)),
	}
	if ko.TableID != nil {
		table, err := s.tableRepo.GetByID(ctx, *ko.TableID)
		if err != nil {
			return nil, err
		}
		if table != nil {
			ticket.Table = table.Name
		}
	}
	for _, item := range ko.Items {
		if item.Cancelled {
			continue
		}
		qty := item.Quantity - item.CancelledQuantity
		if qty <= 0 {
			continue
		}
		ticket.Lines = append(ticket.Lines, entity.KitchenTicketLine{Name: item.Name, Quantity: qty, Note: item.Note})
	}
	return ticket, nil
}

// PrintKitchenOrder prints (or reprints) the ticket of a kitchen order.
// The ticket is returned even when the printer fails so callers can show it.
func (s *PrinterService) PrintKitchenOrder(ctx context.Context, id string) (*entity.KitchenTicket, error) {
	ko, err := s.kitchenRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ko == nil {
		return nil, apperror.NewNotFoundError("Kitchen order")
	}
	return s.print(ctx, ko)
}

func (s *PrinterService) print(ctx context.Context, ko *entity.KitchenOrder) (*entity.KitchenTicket, error) {
	ticket, err := s.BuildTicket(ctx, ko)
	if err != nil {
		return nil, err
	}
	if len(ticket.Lines) == 0 {
		return ticket, nil
	}

	if err := s.printer.Print(ctx, FormatKitchenTicket(ticket, s.width)); err != nil {
		s.log.WithError(err).WithField("kitchen_order_id", ko.ID).Warn("printer error")
		return ticket, fmt.Errorf("failed to print kitchen ticket: %w", err)
	}
	return ticket, nil
}

// Run prints every new kitchen ticket received on events until ctx is done
// or the channel is closed.
func (s *PrinterService) Run(ctx context.Context, events <-chan event.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, ok := ev.Payload.(event.KitchenOrderPayload)
			if !ok {
				continue
			}
			ko := payload.KitchenOrder
			if _, err := s.print(ctx, &ko); err != nil {
				continue
			}
			s.log.WithField("kitchen_order_id", ko.ID).Debug("kitchen ticket printed")
		}
	}
}

// FormatKitchenTicket converts a KitchenTicket into ESC/POS bytes.
func FormatKitchenTicket(t *entity.KitchenTicket, width int) []byte {
	doc := printer.NewDocument(width)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(t.Title).
		SetFontSize(printer.FontNormal)
	if t.IsAdditional {
		doc.Text("** ADDITIONAL **")
	}
	doc.SetBold(false).
		SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Order:", t.OrderNumber)
	if t.Table != "" {
		doc.SetBold(true).
			KeyValue("Table:", t.Table).
			SetBold(false)
	}
	doc.KeyValue("Time:", t.NotifiedAt).
		Separator('-')

	doc.SetFontSize(printer.FontTall)
	for _, line := range t.Lines {
		doc.DishLine(line.Quantity, line.Name)
		if line.Note != "" {
			doc.NoteLine(line.Note)
		}
	}
	doc.SetFontSize(printer.FontNormal).
		Separator('-').
		Text(t.TicketID)

	doc.FeedLines(3).
		Beep(2, 3).
		PartialCut()

	return doc.Bytes()
}
