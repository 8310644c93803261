package services

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks that the proposal is complete enough to be rendered.
// The returned error is a validation.Errors keyed by field.
func (a *Assembler) Validate() error {
	p := a.proposal
	errs := validation.Errors{
		"companyName": validation.Validate(p.Client.CompanyName,
			validation.Required.Error("Client company name is required")),
		"projectName": validation.Validate(p.Project.ProjectName,
			validation.Required.Error("Project name is required")),
		"services": validation.Validate(p.Services,
			validation.Required.Error("At least one service must be selected")),
	}

	for i, s := range p.Services {
		errs[fmt.Sprintf("services.%d.quantity", i)] = validation.Validate(s.Quantity,
			validation.Required.Error(fmt.Sprintf("Service %q must have quantity > 0", s.Name)),
			validation.Min(1).Error(fmt.Sprintf("Service %q must have quantity > 0", s.Name)))

		if IsPricedOnRequest(s.ID) && s.CustomUnitPrice == 0 {
			continue
		}
		errs[fmt.Sprintf("services.%d.price", i)] = validation.Validate(int64(s.UnitPrice),
			validation.Required.Error(fmt.Sprintf("Service %q must have price > 0", s.Name)),
			validation.Min(int64(1)).Error(fmt.Sprintf("Service %q must have price > 0", s.Name)))
	}
	return errs.Filter()
}

// ValidationMessages flattens the result of Validate into user messages in
// a stable order: client, project, service list, then each service line.
func ValidationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	type keyed struct {
		rank, index, field int
		msg                string
	}
	var items []keyed
	for k, e := range verrs {
		item := keyed{msg: e.Error()}
		switch k {
		case "companyName":
			item.rank = 0
		case "projectName":
			item.rank = 1
		case "services":
			item.rank = 2
		default:
			item.rank = 3
			var field string
			if _, scanErr := fmt.Sscanf(k, "services.%d.%s", &item.index, &field); scanErr == nil && field == "price" {
				item.field = 1
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.index != b.index {
			return a.index < b.index
		}
		return a.field < b.field
	})

	msgs := make([]string, len(items))
	for i, it := range items {
		msgs[i] = it.msg
	}
	return msgs
}
