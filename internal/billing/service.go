package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/speccom/fieldproof-backend/internal/completion"
	"github.com/speccom/fieldproof-backend/pkg/config"
	"github.com/speccom/fieldproof-backend/pkg/db"
	"github.com/speccom/fieldproof-backend/pkg/db/models"
	"github.com/speccom/fieldproof-backend/pkg/enums"
	pkgerrors "github.com/speccom/fieldproof-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines invoice lifecycle, line-item, and owner-override
// operations. Invoices leave draft only through the billing gate.
type Service interface {
	EnsureInvoice(ctx context.Context, input EnsureInvoiceInput) (*models.Invoice, error)
	InvoiceView(ctx context.Context, invoiceID uuid.UUID) (*InvoiceView, error)
	MarkInvoiceReady(ctx context.Context, input MarkInvoiceReadyInput) error
	UpdateInvoiceStatus(ctx context.Context, input UpdateInvoiceStatusInput) error
	UpdateInvoiceNotes(ctx context.Context, input UpdateInvoiceNotesInput) error
	AddLineItem(ctx context.Context, input AddLineItemInput) (*models.InvoiceItem, error)
	UpdateLineItem(ctx context.Context, input UpdateLineItemInput) error
	DeleteLineItem(ctx context.Context, input DeleteLineItemInput) error
	ImportApprovedUsage(ctx context.Context, input ImportApprovedUsageInput) ([]models.InvoiceItem, error)
	ExportCSV(ctx context.Context, invoiceID uuid.UUID) (*InvoiceCSV, error)
	CreateOverride(ctx context.Context, input CreateOverrideInput) (*models.OwnerOverride, error)
	ListOverrides(ctx context.Context, nodeID uuid.UUID) ([]models.OwnerOverride, error)
	BillingUnlocked(ctx context.Context, nodeID uuid.UUID) (bool, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	prefix string
	now    func() time.Time
}

// NewService builds a billing service with the required dependencies.
func NewService(repo Repository, tx txRunner, cfg config.BillingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	prefix := strings.TrimSpace(cfg.InvoicePrefix)
	if prefix == "" {
		prefix = "SC"
	}
	return &service{
		repo:   repo,
		tx:     tx,
		prefix: prefix,
		now:    time.Now,
	}, nil
}

func (s *service) EnsureInvoice(ctx context.Context, input EnsureInvoiceInput) (*models.Invoice, error) {
	if input.LocationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole == enums.ActorRoleSplicer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not create invoices")
	}

	var invoice *models.Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		location, err := repo.FindLocation(ctx, input.LocationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "location no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
		}
		node, err := repo.FindNode(ctx, location.NodeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
		}

		existing, err := repo.FindInvoiceForLocation(ctx, node.ProjectID, location.ID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if existing != nil {
			invoice = existing
			return nil
		}

		// Creation consults the billing gate. An open override stands in
		// for eligibility the same way it does for the ready transition.
		override, err := repo.FindOpenOverride(ctx, node.ID, enums.OverrideTypeBillingUnlocked)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load override")
		}
		if override == nil {
			state, err := s.loadNodeState(ctx, repo, node.ID)
			if err != nil {
				return err
			}
			if !completion.BillingEligible(*state) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					"node must be fully complete, marked ready, and proven before invoicing")
			}
		}

		// Advisory max+1: two creations in the same year can race to the
		// same sequence without a uniqueness constraint on (year, seq).
		year := s.now().UTC().Year()
		max, err := repo.MaxInvoiceSequence(ctx, year)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read invoice sequence")
		}
		sequence := max + 1

		invoice, err = repo.CreateInvoice(ctx, &models.Invoice{
			ProjectID:        node.ProjectID,
			SpliceLocationID: location.ID,
			NodeID:           node.ID,
			Number:           fmt.Sprintf("%s-%d-%04d", s.prefix, year, sequence),
			IssuedYear:       year,
			Sequence:         sequence,
			Status:           enums.InvoiceStatusDraft,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_invoices_project_location") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice already exists for this location")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) InvoiceView(ctx context.Context, invoiceID uuid.UUID) (*InvoiceView, error) {
	if invoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	invoice, err := s.repo.FindInvoice(ctx, invoiceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	items, err := s.repo.FindInvoiceItems(ctx, invoice.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice items")
	}
	locked, err := s.invoiceEditLocked(ctx, s.repo, invoice)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.billingUnlocked(ctx, s.repo, invoice.NodeID)
	if err != nil {
		return nil, err
	}

	views := make([]LineItemView, 0, len(items))
	for _, item := range items {
		views = append(views, LineItemView{
			ID:          item.ID,
			WorkCodeID:  item.WorkCodeID,
			Description: item.Description,
			Unit:        item.Unit,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
			SortOrder:   item.SortOrder,
		})
	}
	return &InvoiceView{
		ID:              invoice.ID,
		Number:          invoice.Number,
		Status:          invoice.Status,
		Notes:           invoice.Notes,
		EditLocked:      locked,
		BillingUnlocked: unlocked,
		Subtotal:        invoice.Subtotal,
		Tax:             invoice.Tax,
		Total:           invoice.Total,
		Items:           views,
	}, nil
}

func (s *service) MarkInvoiceReady(ctx context.Context, input MarkInvoiceReadyInput) error {
	return s.UpdateInvoiceStatus(ctx, UpdateInvoiceStatusInput{
		InvoiceID:   input.InvoiceID,
		Next:        enums.InvoiceStatusReady,
		ActorUserID: input.ActorUserID,
		ActorRole:   input.ActorRole,
	})
}

func (s *service) UpdateInvoiceStatus(ctx context.Context, input UpdateInvoiceStatusInput) error {
	if input.InvoiceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if !input.Next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown invoice status %q", input.Next))
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.IsBillingManager() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not change invoice status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindInvoice(ctx, input.InvoiceID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if invoice.Status == input.Next {
			return nil
		}
		if !invoice.Status.CanTransitionTo(input.Next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("invoice cannot move from %s to %s", invoice.Status, input.Next))
		}

		if input.Next == enums.InvoiceStatusReady {
			unlocked, err := s.billingUnlocked(ctx, repo, invoice.NodeID)
			if err != nil {
				return err
			}
			if !unlocked {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "proof photos incomplete and no billing override exists")
			}
			items, err := repo.FindInvoiceItems(ctx, invoice.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice items")
			}
			if !hasBillableLine(items) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice has no line item with a positive quantity")
			}
		}

		if err := repo.UpdateInvoice(ctx, invoice.ID, map[string]any{"status": input.Next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice status")
		}
		return nil
	})
}

func (s *service) UpdateInvoiceNotes(ctx context.Context, input UpdateInvoiceNotesInput) error {
	if input.InvoiceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindInvoice(ctx, input.InvoiceID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if err := s.requireEditable(ctx, repo, invoice); err != nil {
			return err
		}
		if err := repo.UpdateInvoice(ctx, invoice.ID, map[string]any{"notes": input.Notes}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice notes")
		}
		return nil
	})
}

func (s *service) AddLineItem(ctx context.Context, input AddLineItemInput) (*models.InvoiceItem, error) {
	if input.InvoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rate != nil && !input.ActorRole.IsBillingManager() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not hand-edit rates")
	}
	if input.WorkCodeID == nil && strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required without a work code")
	}

	var created *models.InvoiceItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindInvoice(ctx, input.InvoiceID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if err := s.requireEditable(ctx, repo, invoice); err != nil {
			return err
		}

		item := &models.InvoiceItem{
			InvoiceID:   invoice.ID,
			WorkCodeID:  input.WorkCodeID,
			Description: strings.TrimSpace(input.Description),
			Unit:        strings.TrimSpace(input.Unit),
			Quantity:    input.Quantity,
		}
		if input.WorkCodeID != nil {
			code, err := repo.FindWorkCode(ctx, *input.WorkCodeID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "work code not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load work code")
			}
			if item.Description == "" {
				item.Description = code.Description
			}
			if item.Unit == "" {
				item.Unit = code.Unit
			}
			item.Rate, err = s.resolveRate(ctx, repo, invoice.ProjectID, code)
			if err != nil {
				return err
			}
		}
		if input.Rate != nil {
			item.Rate = *input.Rate
		}
		item.Amount = lineAmount(item.Quantity, item.Rate)

		existing, err := repo.FindInvoiceItems(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice items")
		}
		item.SortOrder = len(existing)

		created, err = repo.CreateInvoiceItem(ctx, item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice item")
		}
		return s.recalcTotals(ctx, repo, invoice.ID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) UpdateLineItem(ctx context.Context, input UpdateLineItemInput) error {
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}
	if input.Quantity != nil && input.Quantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rate != nil && !input.ActorRole.IsBillingManager() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not hand-edit rates")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindInvoiceItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line item")
		}
		invoice, err := repo.FindInvoice(ctx, item.InvoiceID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if err := s.requireEditable(ctx, repo, invoice); err != nil {
			return err
		}

		quantity := item.Quantity
		rate := item.Rate
		updates := map[string]any{}
		if input.Description != nil {
			updates["description"] = strings.TrimSpace(*input.Description)
		}
		if input.Quantity != nil {
			quantity = *input.Quantity
			updates["quantity"] = quantity
		}
		if input.Rate != nil {
			rate = *input.Rate
			updates["rate"] = rate
		}
		if len(updates) == 0 {
			return nil
		}
		updates["amount"] = lineAmount(quantity, rate)

		if err := repo.UpdateInvoiceItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line item")
		}
		return s.recalcTotals(ctx, repo, invoice.ID)
	})
}

func (s *service) DeleteLineItem(ctx context.Context, input DeleteLineItemInput) error {
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindInvoiceItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line item")
		}
		invoice, err := repo.FindInvoice(ctx, item.InvoiceID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if err := s.requireEditable(ctx, repo, invoice); err != nil {
			return err
		}
		if err := repo.DeleteInvoiceItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete line item")
		}
		return s.recalcTotals(ctx, repo, invoice.ID)
	})
}

func (s *service) ImportApprovedUsage(ctx context.Context, input ImportApprovedUsageInput) ([]models.InvoiceItem, error) {
	if input.InvoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleOwner && input.ActorRole != enums.ActorRolePrime {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not import usage into an invoice")
	}

	var created []models.InvoiceItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindInvoice(ctx, input.InvoiceID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if err := s.requireEditable(ctx, repo, invoice); err != nil {
			return err
		}

		events, err := repo.FindUsageEventsByNode(ctx, invoice.NodeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load usage events")
		}
		byUnit := map[string]decimal.Decimal{}
		for _, event := range events {
			if event.Status != enums.UsageStatusApproved {
				continue
			}
			byUnit[event.UnitType] = byUnit[event.UnitType].Add(event.Quantity)
		}
		if len(byUnit) == 0 {
			return nil
		}
		units := make([]string, 0, len(byUnit))
		for unit := range byUnit {
			units = append(units, unit)
		}
		sort.Strings(units)

		existing, err := repo.FindInvoiceItems(ctx, invoice.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice items")
		}
		sortOrder := len(existing)

		for _, unit := range units {
			item := &models.InvoiceItem{
				InvoiceID:   invoice.ID,
				Description: fmt.Sprintf("Approved usage (%s)", unit),
				Unit:        unit,
				Quantity:    byUnit[unit],
				SortOrder:   sortOrder,
			}
			codes, err := repo.FindWorkCodesByUnit(ctx, unit)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load work codes")
			}
			// Only an unambiguous match binds a work code to the line.
			if len(codes) == 1 {
				code := codes[0]
				item.WorkCodeID = &code.ID
				item.Description = code.Description
				item.Rate, err = s.resolveRate(ctx, repo, invoice.ProjectID, &code)
				if err != nil {
					return err
				}
			}
			item.Amount = lineAmount(item.Quantity, item.Rate)

			stored, err := repo.CreateInvoiceItem(ctx, item)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice item")
			}
			created = append(created, *stored)
			sortOrder++
		}
		return s.recalcTotals(ctx, repo, invoice.ID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ExportCSV(ctx context.Context, invoiceID uuid.UUID) (*InvoiceCSV, error) {
	if invoiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	invoice, err := s.repo.FindInvoice(ctx, invoiceID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	items, err := s.repo.FindInvoiceItems(ctx, invoice.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice items")
	}

	rows := [][]string{{"Description", "Unit", "Quantity", "Rate", "Amount"}}
	for _, item := range items {
		rows = append(rows, []string{
			item.Description,
			item.Unit,
			item.Quantity.String(),
			item.Rate.StringFixed(2),
			item.Amount.StringFixed(2),
		})
	}
	rows = append(rows,
		[]string{"Subtotal", "", "", "", invoice.Subtotal.StringFixed(2)},
		[]string{"Tax", "", "", "", invoice.Tax.StringFixed(2)},
		[]string{"Total", "", "", "", invoice.Total.StringFixed(2)},
	)

	return &InvoiceCSV{
		Filename: fmt.Sprintf("invoice-%s.csv", invoice.Number),
		Rows:     rows,
	}, nil
}

func (s *service) CreateOverride(ctx context.Context, input CreateOverrideInput) (*models.OwnerOverride, error) {
	if input.NodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown override type %q", input.Type))
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override reason required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner may create an override")
	}

	var created *models.OwnerOverride
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindNode(ctx, input.NodeID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
		}
		var err error
		created, err = repo.CreateOverride(ctx, &models.OwnerOverride{
			NodeID:    input.NodeID,
			Type:      input.Type,
			Reason:    reason,
			CreatedBy: &input.ActorUserID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create override")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ListOverrides(ctx context.Context, nodeID uuid.UUID) ([]models.OwnerOverride, error) {
	if nodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	overrides, err := s.repo.ListOverridesByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overrides")
	}
	return overrides, nil
}

func (s *service) BillingUnlocked(ctx context.Context, nodeID uuid.UUID) (bool, error) {
	if nodeID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "node id required")
	}
	return s.billingUnlocked(ctx, s.repo, nodeID)
}

// billingUnlocked reports whether the node passes the billing gate:
// complete proof photos, or an explicit BILLING_UNLOCKED override.
func (s *service) billingUnlocked(ctx context.Context, repo Repository, nodeID uuid.UUID) (bool, error) {
	override, err := repo.FindOpenOverride(ctx, nodeID, enums.OverrideTypeBillingUnlocked)
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load override")
	}
	if override != nil {
		return true, nil
	}

	state, err := s.loadNodeState(ctx, repo, nodeID)
	if err != nil {
		return false, err
	}
	return completion.ProofStatus(*state).PhotosOK, nil
}

func (s *service) requireEditable(ctx context.Context, repo Repository, invoice *models.Invoice) error {
	locked, err := s.invoiceEditLocked(ctx, repo, invoice)
	if err != nil {
		return err
	}
	if locked {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("invoice %s is locked in status %s", invoice.Number, invoice.Status))
	}
	return nil
}

func (s *service) invoiceEditLocked(ctx context.Context, repo Repository, invoice *models.Invoice) (bool, error) {
	if !invoice.Status.LocksEdits() {
		return false, nil
	}
	override, err := repo.FindOpenOverride(ctx, invoice.NodeID, enums.OverrideTypeBillingUnlocked)
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load override")
	}
	return override == nil, nil
}

// resolveRate prefers the active rate card's entry for the code and
// falls back to the code's default rate.
func (s *service) resolveRate(ctx context.Context, repo Repository, projectID uuid.UUID, code *models.WorkCode) (decimal.Decimal, error) {
	card, err := repo.FindActiveRateCard(ctx, projectID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return code.DefaultRate, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rate card")
	}
	item, err := repo.FindRateCardItem(ctx, card.ID, code.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return code.DefaultRate, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rate card item")
	}
	return item.Rate, nil
}

func (s *service) recalcTotals(ctx context.Context, repo Repository, invoiceID uuid.UUID) error {
	items, err := repo.FindInvoiceItems(ctx, invoiceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice items")
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	updates := map[string]any{
		"subtotal": subtotal,
		"tax":      decimal.Zero,
		"total":    subtotal,
	}
	if err := repo.UpdateInvoice(ctx, invoiceID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice totals")
	}
	return nil
}

func (s *service) loadNodeState(ctx context.Context, repo Repository, nodeID uuid.UUID) (*completion.NodeState, error) {
	node, err := repo.FindNode(ctx, nodeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "node not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load node")
	}
	locations, err := repo.FindLocationsByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load locations")
	}
	photosByLocation, err := repo.FindSlotPhotosByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot photos")
	}
	inventory, err := repo.FindInventoryByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	events, err := repo.FindUsageEventsByNode(ctx, nodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load usage events")
	}

	state := completion.NodeState{ReadyForBilling: node.ReadyForBilling}
	for _, loc := range locations {
		state.Locations = append(state.Locations, completion.LocationStateFrom(loc, photosByLocation[loc.ID]))
	}
	for _, item := range inventory {
		state.Inventory = append(state.Inventory, completion.InventoryState{Completed: item.Completed})
	}
	for _, event := range events {
		state.Usage = append(state.Usage, completion.UsageStateFrom(event))
	}
	return &state, nil
}

func lineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(2)
}

func hasBillableLine(items []models.InvoiceItem) bool {
	for _, item := range items {
		if item.Quantity.IsPositive() {
			return true
		}
	}
	return false
}
