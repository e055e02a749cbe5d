package tools

import (
	"fmt"
	"strings"

	"github.com/lapu-lapu-poc/server/internal/catalog"
	"github.com/lapu-lapu-poc/server/internal/model"
)

// Fixed lines spoken when a call cannot be handled.
const (
	UnknownToolMessage = "I'm sorry, I can't help with that request right now. Would you like me to connect you with one of our pharmacists?"
	FallbackMessage    = "I'm sorry, something went wrong on my end. Let me connect you with one of our team members who can help."

	askProductMessage     = "Sure, which product are you looking for? You can tell me the brand or the generic name."
	confirmProductMessage = "I couldn't find that product in our catalog. Could you please confirm the product name?"
)

// maxListed caps how many products are read out when a lookup is ambiguous.
const maxListed = 5

func noMatchMessage(query string) string {
	return fmt.Sprintf("I'm sorry, I couldn't find any product matching %s. "+
		"Would you like me to check a similar product, or connect you with one of our pharmacists?", query)
}

func multipleMatchesMessage(query string, matches []model.Product) string {
	listed := matches
	if len(listed) > maxListed {
		listed = listed[:maxListed]
	}
	items := make([]string, 0, len(listed))
	for _, p := range listed {
		items = append(items, fmt.Sprintf("%s, %s, %s pesos", p.ProductName, p.SizeVariant, catalog.FormatPrice(p.RegularPrice)))
	}

	var b strings.Builder
	if len(matches) > maxListed {
		fmt.Fprintf(&b, "I found %d products matching %s. Here are the first %d: ", len(matches), query, maxListed)
	} else {
		fmt.Fprintf(&b, "I found %d products matching %s: ", len(matches), query)
	}
	b.WriteString(strings.Join(items, "; "))
	b.WriteString(". Which one would you like?")
	return b.String()
}

func orderConfirmation(o model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your order has been placed. Your order number is %s. ", o.ID)
	fmt.Fprintf(&b, "That's %d %s", o.Quantity, o.ProductName)
	if o.SizeVariant != "" {
		fmt.Fprintf(&b, ", %s", o.SizeVariant)
	}
	if o.IsPWDSenior {
		b.WriteString(", with the PWD or Senior Citizen discount applied")
	}
	fmt.Fprintf(&b, ", for a total of %s pesos. ", catalog.FormatPrice(o.TotalPrice))
	if o.CustomerPhone != "" {
		fmt.Fprintf(&b, "Our team will call you at %s to confirm your order.", o.CustomerPhone)
	} else {
		b.WriteString("Our team will call you to confirm your order.")
	}
	return b.String()
}

func complaintConfirmation(c model.Complaint) string {
	return fmt.Sprintf("I've logged your concern. Your reference number is %s. "+
		"Our customer care team will get back to you within 24 to 48 hours.", c.ID)
}

func transferMessage(department string) string {
	if department == "" {
		return "Please hold while I transfer you to one of our team members."
	}
	return fmt.Sprintf("Please hold while I transfer you to our %s team.", department)
}
