package domain

import (
	"fmt"
	"strings"
	"time"
)

// Partition addresses one batch unit of the lake: all bronze objects of a
// (company, domain) pair that arrived on a given date.
type Partition struct {
	Company string
	Domain  string
	Date    time.Time
}

// NewPartition builds a Partition from request parameters. The date must be
// in yyyy-mm-dd form.
func NewPartition(company, domainName, date string) (Partition, error) {
	if company == "" {
		return Partition{}, ErrValidation("company is required")
	}
	if domainName == "" {
		return Partition{}, ErrValidation("domain is required")
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Partition{}, ErrValidation("invalid date %q: expected yyyy-mm-dd", date)
	}
	return Partition{Company: company, Domain: domainName, Date: d}, nil
}

// Prefix returns the bronze listing prefix for this partition, ending with
// a slash: "company/domain/yyyy/mm/dd/".
func (p Partition) Prefix() string {
	return fmt.Sprintf("%s/%s/%s/", p.Company, p.Domain, p.Date.Format("2006/01/02"))
}

// String renders the partition identity for logs and error messages.
func (p Partition) String() string {
	return fmt.Sprintf("%s/%s@%s", p.Company, p.Domain, p.Date.Format("2006-01-02"))
}

// LeaseKey returns the key used for per-partition mutual exclusion.
func (p Partition) LeaseKey() string {
	return fmt.Sprintf("%s__%s__%s", p.Company, p.Domain, p.Date.Format("2006-01-02"))
}

// BronzePath computes the destination path for an object relocated into the
// bronze layer. The date component is the processing time, not any date
// embedded in the source key, so loads must be addressed the same way.
func BronzePath(company, domainName, remainder string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s", company, domainName, at.Format("2006/01/02"), remainder)
}

// SplitObjectKey decomposes a landing object key into company, domain, and
// the remaining path. Keys with fewer than three segments cannot be placed
// in a partition and are rejected.
func SplitObjectKey(key string) (company, domainName, remainder string, err error) {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", ErrValidation(
			"object key %q must be nested under a company and domain (e.g. acme/sales/orders.csv)", key)
	}
	return parts[0], parts[1], parts[2], nil
}
