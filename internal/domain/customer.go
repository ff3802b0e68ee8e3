package domain

import (
	"time"
)

// DocumentType identifies the Brazilian taxpayer document of a customer.
type DocumentType string

const (
	DocumentTypeCPF  DocumentType = "CPF"
	DocumentTypeCNPJ DocumentType = "CNPJ"
)

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeCPF || t == DocumentTypeCNPJ
}

// Customer is a person or company allowed to trade against a limit.
type Customer struct {
	ID           string
	Name         string
	Document     string // digits only
	DocumentType DocumentType
	Phone        string
	Email        string
	IsCompany    bool
	CreatedBy    string
	CreatedAt    time.Time
}

// Validate checks the customer fields that do not need the registry.
func (c *Customer) Validate() error {
	if err := ValidateCustomerName(c.Name); err != nil {
		return err
	}

	if err := ValidateDocument(c.Document, c.DocumentType); err != nil {
		return err
	}

	if c.IsCompany != (c.DocumentType == DocumentTypeCNPJ) {
		return ErrDocumentTypeMismatch
	}

	if err := ValidatePhone(c.Phone); err != nil {
		return err
	}

	return ValidateEmail(c.Email)
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search string // matches name, document or email
	Limit  int
	Offset int
}
