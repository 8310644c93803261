package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type contactDef struct {
	name  string
	email string
}

type companyDef struct {
	clientID      string
	companyName   string
	primaryDomain string
	street        string
	postalCode    string
	city          string
	emails        []string
	contacts      []contactDef
}

var seedCompanies = []companyDef{
	{
		clientID:      "10001",
		companyName:   "Bodensee Wohnbau GmbH",
		primaryDomain: "bodensee-wohnbau.de",
		street:        "Seestraße 12",
		postalCode:    "78464",
		city:          "Konstanz",
		emails:        []string{"info@bodensee-wohnbau.de"},
		contacts: []contactDef{
			{name: "Anna Keller", email: "a.keller@bodensee-wohnbau.de"},
		},
	},
	{
		clientID:      "10002",
		companyName:   "Schwarzwald Immobilien AG",
		primaryDomain: "schwarzwald-immo.de",
		street:        "Kaiser-Joseph-Str. 200",
		postalCode:    "79098",
		city:          "Freiburg",
		emails:        []string{"vertrieb@schwarzwald-immo.de", "office@schwarzwald-immo.de"},
		contacts: []contactDef{
			{name: "Markus Brandt", email: "brandt@gmail.com"},
		},
	},
	{
		clientID:    "10003",
		companyName: "Projektbau Hegau KG",
		street:      "Industriestr. 4",
		postalCode:  "78224",
		city:        "Singen",
	},
}

// Seed populates the client directory with sample companies so client
// lookups work on a fresh install. It is safe to call on every startup
// because it returns early if any company records already exist.
func Seed(app *pocketbase.PocketBase) error {
	companiesCol, err := app.FindCollectionByNameOrId("companies")
	if err != nil {
		return fmt.Errorf("seed: could not find companies collection: %w", err)
	}
	existing, err := app.FindAllRecords(companiesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query companies: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	log.Println("seed: companies collection is empty – inserting seed data …")

	emailsCol, err := app.FindCollectionByNameOrId("company_emails")
	if err != nil {
		return fmt.Errorf("seed: could not find company_emails collection: %w", err)
	}
	contactsCol, err := app.FindCollectionByNameOrId("contacts")
	if err != nil {
		return fmt.Errorf("seed: could not find contacts collection: %w", err)
	}

	for _, def := range seedCompanies {
		company := core.NewRecord(companiesCol)
		company.Set("client_id", def.clientID)
		company.Set("company_name", def.companyName)
		company.Set("primary_domain", def.primaryDomain)
		company.Set("street", def.street)
		company.Set("postal_code", def.postalCode)
		company.Set("city", def.city)
		if err := app.Save(company); err != nil {
			return fmt.Errorf("seed: save company %q: %w", def.companyName, err)
		}

		for _, email := range def.emails {
			r := core.NewRecord(emailsCol)
			r.Set("company", company.Id)
			r.Set("email", email)
			if err := app.Save(r); err != nil {
				return fmt.Errorf("seed: save email %q: %w", email, err)
			}
		}

		for _, c := range def.contacts {
			r := core.NewRecord(contactsCol)
			r.Set("company", company.Id)
			r.Set("name", c.name)
			r.Set("email", c.email)
			if err := app.Save(r); err != nil {
				return fmt.Errorf("seed: save contact %q: %w", c.email, err)
			}
		}
	}

	log.Printf("seed: inserted %d companies\n", len(seedCompanies))
	return nil
}
