package services

import (
	"log"

	"github.com/scrollcampus/portal-api/internal/models"
)

// Notifier surfaces user-visible confirmations to whatever presentation
// layer hosts the service.
type Notifier interface {
	// TenantSwitched confirms a successful switch, naming the new tenant
	// and the user's role in it.
	TenantSwitched(userID, institutionName string, role models.Role)
}

// ConsoleNotifier writes confirmations to the process log.
type ConsoleNotifier struct{}

// NewConsoleNotifier creates a new ConsoleNotifier.
func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (n *ConsoleNotifier) TenantSwitched(userID, institutionName string, role models.Role) {
	log.Printf("user %s is now acting in %s as %s", userID, institutionName, role)
}
