package entity

import "strings"

// Catalog holds the fixed technician roster and claim type list.
type Catalog struct {
	technicians []string
	claimTypes  []string
}

func NewCatalog(technicians, claimTypes []string) Catalog {
	return Catalog{
		technicians: trimAll(technicians),
		claimTypes:  trimAll(claimTypes),
	}
}

func (c Catalog) Technicians() []string {
	return append([]string(nil), c.technicians...)
}

func (c Catalog) ClaimTypes() []string {
	return append([]string(nil), c.claimTypes...)
}

// Technician resolves name case-insensitively to its roster spelling.
func (c Catalog) Technician(name string) (string, bool) {
	return lookup(c.technicians, name)
}

func (c Catalog) ClaimType(name string) (string, bool) {
	return lookup(c.claimTypes, name)
}

func lookup(list []string, name string) (string, bool) {
	name = strings.TrimSpace(name)

	for _, v := range list {
		if strings.EqualFold(v, name) {
			return v, true
		}
	}

	return "", false
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))

	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}
