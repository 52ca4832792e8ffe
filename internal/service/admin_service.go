package service

import (
	"context"
	"fmt"

	"github.com/mclasstourism/travelbill-sub003/internal/model"
	"github.com/mclasstourism/travelbill-sub003/internal/repository"
	ws "github.com/mclasstourism/travelbill-sub003/internal/websocket"
	"github.com/mclasstourism/travelbill-sub003/pkg/logger"
)

// AdminService groups the destructive maintenance operations. These
// bypass the mutation engine on purpose: they truncate whole tables and
// zero balances, so ledger and balances stay consistent (both empty).
type AdminService interface {
	ResetFinanceData(ctx context.Context, userID string) error
	ResetInvoices(ctx context.Context, userID string) error
	ResetTickets(ctx context.Context, userID string) error
	CleanupAllData(ctx context.Context, userID string) error
	LogoutAllUsers(ctx context.Context, userID string) error
	SendReport(ctx context.Context, userID string) (model.DashboardMetrics, error)
}

type adminService struct {
	customerRepo repository.CustomerRepository
	agentRepo    repository.AgentRepository
	vendorRepo   repository.VendorRepository
	ledgerRepo   repository.LedgerRepository
	invoiceRepo  repository.InvoiceRepository
	ticketRepo   repository.TicketRepository
	seqRepo      repository.SequenceRepository
	userRepo     repository.UserRepository
	metricsRepo  repository.MetricsRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewAdminService(
	customerRepo repository.CustomerRepository,
	agentRepo repository.AgentRepository,
	vendorRepo repository.VendorRepository,
	ledgerRepo repository.LedgerRepository,
	invoiceRepo repository.InvoiceRepository,
	ticketRepo repository.TicketRepository,
	seqRepo repository.SequenceRepository,
	userRepo repository.UserRepository,
	metricsRepo repository.MetricsRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) AdminService {
	return &adminService{
		customerRepo: customerRepo,
		agentRepo:    agentRepo,
		vendorRepo:   vendorRepo,
		ledgerRepo:   ledgerRepo,
		invoiceRepo:  invoiceRepo,
		ticketRepo:   ticketRepo,
		seqRepo:      seqRepo,
		userRepo:     userRepo,
		metricsRepo:  metricsRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// ResetFinanceData wipes all three ledgers and zeroes every party
// balance, leaving profiles and documents in place.
func (s *adminService) ResetFinanceData(ctx context.Context, userID string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ledgerRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete ledger rows: %w", err)
		}
		if err := s.customerRepo.ZeroBalances(txCtx); err != nil {
			return fmt.Errorf("failed to zero customer balances: %w", err)
		}
		if err := s.agentRepo.ZeroBalances(txCtx); err != nil {
			return fmt.Errorf("failed to zero agent balances: %w", err)
		}
		if err := s.vendorRepo.ZeroBalances(txCtx); err != nil {
			return fmt.Errorf("failed to zero vendor balances: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionResetFinance, "", "", nil)
	})
	if err != nil {
		return err
	}

	logger.Warn("finance data reset", "user_id", userID)
	s.hub.Publish(ws.EventFinanceDataReset, map[string]interface{}{"scope": "finance"})
	return nil
}

// ResetInvoices deletes every invoice and winds the number sequence
// back to its base.
func (s *adminService) ResetInvoices(ctx context.Context, userID string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete invoices: %w", err)
		}
		if err := s.seqRepo.Reset(txCtx, model.SeqInvoice, model.SequenceBase); err != nil {
			return fmt.Errorf("failed to reset invoice sequence: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionResetInvoices, "", "", nil)
	})
	if err != nil {
		return err
	}

	logger.Warn("invoices reset", "user_id", userID)
	return nil
}

func (s *adminService) ResetTickets(ctx context.Context, userID string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ticketRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete tickets: %w", err)
		}
		if err := s.seqRepo.Reset(txCtx, model.SeqTicket, model.SequenceBase); err != nil {
			return fmt.Errorf("failed to reset ticket sequence: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionResetTickets, "", "", nil)
	})
	if err != nil {
		return err
	}

	logger.Warn("tickets reset", "user_id", userID)
	return nil
}

// CleanupAllData is the full factory wipe: documents, ledgers, parties
// and sequences. Users and audit history survive.
func (s *adminService) CleanupAllData(ctx context.Context, userID string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete invoices: %w", err)
		}
		if err := s.ticketRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete tickets: %w", err)
		}
		if err := s.ledgerRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete ledger rows: %w", err)
		}
		if err := s.customerRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete customers: %w", err)
		}
		if err := s.agentRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete agents: %w", err)
		}
		if err := s.vendorRepo.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to delete vendors: %w", err)
		}
		if err := s.seqRepo.Reset(txCtx, model.SeqInvoice, model.SequenceBase); err != nil {
			return fmt.Errorf("failed to reset invoice sequence: %w", err)
		}
		if err := s.seqRepo.Reset(txCtx, model.SeqTicket, model.SequenceBase); err != nil {
			return fmt.Errorf("failed to reset ticket sequence: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCleanupAll, "", "", nil)
	})
	if err != nil {
		return err
	}

	logger.Warn("all data cleaned up", "user_id", userID)
	s.hub.Publish(ws.EventFinanceDataReset, map[string]interface{}{"scope": "all"})
	return nil
}

// LogoutAllUsers invalidates every refresh token; access tokens expire
// on their own.
func (s *adminService) LogoutAllUsers(ctx context.Context, userID string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.DeleteAllRefreshTokens(txCtx); err != nil {
			return fmt.Errorf("failed to delete refresh tokens: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, userID, model.ActionLogoutAllUsers, "", "", nil)
	})
	if err != nil {
		return err
	}

	logger.Warn("all users logged out", "user_id", userID)
	return nil
}

// SendReport snapshots the dashboard metrics and logs them. Delivery
// to an external channel is out of scope; the snapshot is returned to
// the caller and audit-logged.
func (s *adminService) SendReport(ctx context.Context, userID string) (model.DashboardMetrics, error) {
	metrics, err := s.metricsRepo.GetDashboardMetrics(ctx)
	if err != nil {
		return model.DashboardMetrics{}, fmt.Errorf("failed to compute report metrics: %w", err)
	}

	if err := writeAudit(ctx, s.auditRepo, userID, model.ActionSendReport, "", "", metrics); err != nil {
		return model.DashboardMetrics{}, err
	}

	logger.Info("report generated",
		"total_revenue", metrics.TotalRevenue.StringFixed(2),
		"pending_receivables", metrics.PendingReceivables.StringFixed(2),
		"customer_deposit_total", metrics.CustomerDepositTotal.StringFixed(2),
		"invoice_count", metrics.InvoiceCount,
		"ticket_count", metrics.TicketCount,
	)
	return metrics, nil
}
