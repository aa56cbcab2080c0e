// Package workflow is the sole authority over order status. Every status
// change goes through Apply, which validates the transition, stamps the
// lifecycle dates, and returns the communication log entry and notification
// intents as data. Callers persist the order and communication in one
// transaction and dispatch the intents only after commit.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// followUpDays is how many days after delivery the reorder reminder is due.
const followUpDays = 30

// Actors recorded on communications.
const (
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

// transitions maps each status to the single next status. The lifecycle only
// moves forward, one step at a time.
var transitions = map[string]string{
	domain.OrderStatusPendingPayment:  domain.OrderStatusPaymentReceived,
	domain.OrderStatusPaymentReceived: domain.OrderStatusBeingFulfilled,
	domain.OrderStatusBeingFulfilled:  domain.OrderStatusShipped,
	domain.OrderStatusShipped:         domain.OrderStatusDelivered,
	domain.OrderStatusDelivered:       domain.OrderStatusFollowUp,
}

// CanTransition reports whether from → to is an allowed step.
func CanTransition(from, to string) bool {
	next, ok := transitions[from]
	return ok && next == to
}

// Input carries the optional inputs of a transition.
type Input struct {
	// TrackingNumber is stored verbatim on the shipped transition. Optional.
	TrackingNumber string
	// Actor is recorded as logged_by on the communication. Defaults to admin.
	Actor string
	// ProviderPaymentID marks a payment_received transition as settled by the
	// payment processor. It is stored on the order.
	ProviderPaymentID string
}

// Result is the outcome of a valid transition: the updated order copy, the
// communication to log alongside it, and the notifications to send after the
// transaction commits.
type Result struct {
	Order         domain.Order
	Communication domain.Communication
	Intents       []notifier.Intent
}

// Apply transitions the order to the target status. The customer may be nil;
// customer-facing notifications are then skipped. On an invalid transition the
// input order is untouched and an InvalidTransition error is returned.
func Apply(order domain.Order, customer *domain.Customer, target string, in Input, now time.Time) (*Result, error) {
	if !CanTransition(order.Status, target) {
		return nil, apperrors.InvalidTransition(order.Status, target)
	}

	actor := in.Actor
	if actor == "" {
		actor = ActorAdmin
	}

	order.Status = target
	order.UpdatedAt = now

	switch target {
	case domain.OrderStatusPaymentReceived:
		if in.ProviderPaymentID != "" {
			order.ProviderPaymentID = in.ProviderPaymentID
		}
	case domain.OrderStatusShipped:
		shipped := now
		order.ShippedDate = &shipped
		if in.TrackingNumber != "" {
			order.TrackingNumber = in.TrackingNumber
		}
	case domain.OrderStatusDelivered:
		delivered := now
		followUp := now.AddDate(0, 0, followUpDays)
		order.DeliveredDate = &delivered
		order.FollowUpDate = &followUp
	case domain.OrderStatusFollowUp:
		order.FollowUpSent = true
	}

	res := &Result{
		Order:         order,
		Communication: buildCommunication(order, target, actor, in, now),
		Intents:       buildIntents(order, customer, target, actor, in),
	}
	return res, nil
}

func buildCommunication(order domain.Order, target, actor string, in Input, now time.Time) domain.Communication {
	comm := domain.Communication{
		CustomerID: order.CustomerID,
		Date:       now,
		LoggedBy:   actor,
	}

	if target == domain.OrderStatusFollowUp && actor == ActorSystem {
		comm.Type = domain.CommunicationTypeFollowUp
		comm.Subject = fmt.Sprintf("Reorder reminder sent (%s)", order.OrderNumber)
		comm.Content = "Automated 30-day reorder reminder sent."
		return comm
	}

	if target == domain.OrderStatusPaymentReceived && in.ProviderPaymentID != "" {
		comm.Type = domain.CommunicationTypePaymentReceived
		comm.Subject = fmt.Sprintf("Payment received for %s", order.OrderNumber)
		comm.Content = fmt.Sprintf("Provider payment %s completed. Amount: $%s", in.ProviderPaymentID, FormatCents(order.Total))
		return comm
	}

	switch target {
	case domain.OrderStatusShipped:
		comm.Type = domain.CommunicationTypeShipped
	case domain.OrderStatusPaymentReceived:
		comm.Type = domain.CommunicationTypePaymentReceived
	default:
		comm.Type = domain.CommunicationTypeNote
	}
	comm.Subject = fmt.Sprintf("Order %s - %s", order.OrderNumber, strings.ReplaceAll(target, "_", " "))
	comm.Content = fmt.Sprintf("Order status updated to: %s", target)
	return comm
}

func buildIntents(order domain.Order, customer *domain.Customer, target, actor string, in Input) []notifier.Intent {
	if customer == nil {
		return nil
	}

	switch target {
	case domain.OrderStatusPaymentReceived:
		return []notifier.Intent{{
			Channel:   notifier.ChannelEmail,
			Recipient: customer.Email,
			Subject:   fmt.Sprintf("Payment Received - Order %s", order.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nWe've received your payment of $%s for order %s.\n\nWe're now preparing your order for shipment. You'll receive tracking information once it ships.\n\nThank you,\nBanwell Designs",
				customer.ContactName, FormatCents(order.Total), order.OrderNumber),
		}}

	case domain.OrderStatusShipped:
		trackingInfo := "Tracking information will be provided separately."
		if in.TrackingNumber != "" {
			trackingInfo = "Tracking Number: " + in.TrackingNumber
		}
		return []notifier.Intent{{
			Channel:   notifier.ChannelEmail,
			Recipient: customer.Email,
			Subject:   fmt.Sprintf("Your Order Has Shipped - %s", order.OrderNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour order %s has shipped!\n\n%s\n\nThank you,\nBanwell Designs",
				customer.ContactName, order.OrderNumber, trackingInfo),
		}}

	case domain.OrderStatusFollowUp:
		if actor != ActorSystem {
			return nil
		}
		return []notifier.Intent{
			{
				Channel:   notifier.ChannelEmail,
				Recipient: customer.Email,
				Subject:   "Time to restock? - Banwell Designs",
				Body: fmt.Sprintf(
					"Hi %s,\n\nIt's been about a month since your last order (%s). Ready to restock?\n\nThank you,\nBanwell Designs",
					customer.ContactName, order.OrderNumber),
			},
			{
				Channel:  notifier.ChannelPush,
				Subject:  "Reorder Reminder Sent",
				Body:     fmt.Sprintf("Sent to %s (%s)", customer.BusinessName, customer.ContactName),
				Priority: notifier.PriorityNormal,
			},
		}
	}

	return nil
}

// FormatCents renders an integer cent amount as a dollar string, e.g. 54000
// becomes "540.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
