package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

type JSON = map[string]any

func TestClientsAPI(t *testing.T) {

	biff.Alternative("Clients", func(a *biff.A) {

		fb := newFakeBackend()
		app, h := newTestApp(t, fb)
		api := apitest.NewWithHandler(adaptor.FiberApp(app))

		a.Alternative("List", func(a *biff.A) {
			resp := api.Request("GET", "/api/clients").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(len(resp.BodyJson().([]any)), 2)
		})

		a.Alternative("Search", func(a *biff.A) {
			resp := api.Request("GET", "/api/clients/search?q=bak").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			found := resp.BodyJson().([]any)
			biff.AssertEqual(len(found), 1)
			biff.AssertEqual(found[0].(JSON)["clientName"], "Zenith Bakery")
		})

		a.Alternative("Select unknown", func(a *biff.A) {
			resp := api.Request("POST", "/api/clients/42/select").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			biff.AssertEqual(resp.BodyJson().(JSON)["success"], false)
		})

		a.Alternative("Select", func(a *biff.A) {
			resp := api.Request("POST", "/api/clients/2/select").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			selected, ok := h.Directory.Selected()
			biff.AssertTrue(ok)
			biff.AssertEqual(selected.AccessCode, "ZB1")
		})

		a.Alternative("Client statements", func(a *biff.A) {
			resp := api.Request("GET", "/api/clients/1/statements?pageSize=10").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			body := resp.BodyJson().(JSON)
			rows := body["rows"].([]any)
			biff.AssertEqual(len(rows), 1)
			biff.AssertEqual(rows[0].(JSON)["accountId"], "acc-1")
			biff.AssertEqual(rows[0].(JSON)["bankName"], "Metro Bank")
			biff.AssertEqual(rows[0].(JSON)["number"], 1.0)
			biff.AssertEqual(body["pagination"].(JSON)["pageSize"], 10.0)

			resp = api.Request("GET", "/api/clients/2/statements").Do()
			biff.AssertEqual(len(resp.BodyJson().(JSON)["rows"].([]any)), 0)

			resp = api.Request("GET", "/api/clients/42/statements").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})

		a.Alternative("Create invalid", func(a *biff.A) {
			resp := api.Request("POST", "/api/clients").
				WithHeader("Content-Type", "application/json").
				WithBodyJson(JSON{"clientName": "New Co"}).
				Do()
			biff.AssertEqual(resp.StatusCode, http.StatusUnprocessableEntity)
			body := resp.BodyJson().(JSON)
			biff.AssertEqual(body["error"], "Please fill in all required fields correctly")
			biff.AssertEqual(body["fieldErrors"].(JSON)["accessCode"], "Access Code is required!")
			biff.AssertFalse(fb.called("POST /add-client"))
		})

		a.Alternative("Create", func(a *biff.A) {
			resp := api.Request("POST", "/api/clients").
				WithHeader("Content-Type", "application/json").
				WithBodyJson(JSON{
					"clientName":   "New Co",
					"accessCode":   "NC1",
					"contactName":  "Nia",
					"contactPhone": "0700",
					"clientType":   "Individual",
				}).
				Do()
			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), JSON{"success": true, "message": "Client created"})

			a.Alternative("Searchable after reload", func(a *biff.A) {
				resp := api.Request("GET", "/api/clients/search?q=new").Do()
				biff.AssertEqual(len(resp.BodyJson().([]any)), 1)
			})
		})

		a.Alternative("Delete through the confirmation gate", func(a *biff.A) {
			resp := api.Request("POST", "/api/clients/delete/confirm").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)

			resp = api.Request("POST", "/api/clients/rows/1/delete").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJson().(JSON)["title"], "Delete client")

			a.Alternative("Decline", func(a *biff.A) {
				resp := api.Request("POST", "/api/clients/delete/decline").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(len(h.Directory.Clients.Rows()), 2)
				biff.AssertFalse(fb.called("DELETE /delete/1"))
			})

			a.Alternative("Confirm", func(a *biff.A) {
				resp := api.Request("POST", "/api/clients/delete/confirm").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(len(h.Directory.Clients.Rows()), 1)
				biff.AssertTrue(fb.called("DELETE /delete/1"))
			})
		})
	})
}

func TestStatementAPI(t *testing.T) {

	biff.Alternative("Statement ledger", func(a *biff.A) {

		fb := newFakeBackend()
		app, _ := newTestApp(t, fb)
		api := apitest.NewWithHandler(adaptor.FiberApp(app))

		a.Alternative("Not open", func(a *biff.A) {
			resp := api.Request("GET", "/api/statements/acc-1/rows").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		})

		a.Alternative("Open unknown account", func(a *biff.A) {
			resp := api.Request("POST", "/api/statements/acc-9/open").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusBadGateway)
			biff.AssertEqual(resp.BodyJson().(JSON)["error"] != "", true)
		})

		a.Alternative("Open", func(a *biff.A) {
			resp := api.Request("POST", "/api/statements/acc-1/open").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			body := resp.BodyJson().(JSON)
			biff.AssertEqual(body["header"].(JSON)["value"].(JSON)["bankName"], "Metro Bank")
			rows := body["rows"].(JSON)["rows"].([]any)
			biff.AssertEqual(len(rows), 2)
			biff.AssertTrue(fb.called("GET /classify-transactions"))

			a.Alternative("Patch without edit", func(a *biff.A) {
				resp := api.Request("PATCH", "/api/statements/acc-1/rows/1").
					WithHeader("Content-Type", "application/json").
					WithBodyJson(JSON{"field": "amount", "value": "25"}).
					Do()
				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Edit and commit", func(a *biff.A) {
				resp := api.Request("POST", "/api/statements/acc-1/rows/1/edit").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJson().(JSON)["activeId"], "1")

				resp = api.Request("POST", "/api/statements/acc-1/rows/2/edit").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusConflict)

				resp = api.Request("PATCH", "/api/statements/acc-1/rows/1").
					WithHeader("Content-Type", "application/json").
					WithBodyJson(JSON{"field": "amount", "value": "25"}).
					Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				a.Alternative("Commit", func(a *biff.A) {
					resp := api.Request("POST", "/api/statements/acc-1/commit").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqual(resp.BodyJson().(JSON)["state"], "viewing")
					put := fb.lastPut()
					biff.AssertEqual(put.Transactions[0].Amount, 25.0)
					biff.AssertEqual(put.AccountInfo.BankName, "Metro Bank")
				})

				a.Alternative("Cancel", func(a *biff.A) {
					resp := api.Request("POST", "/api/statements/acc-1/cancel").Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					first := resp.BodyJson().(JSON)["rows"].([]any)[0].(JSON)["record"].(JSON)
					biff.AssertEqual(first["amount"], 10.0)
					biff.AssertFalse(fb.called("PUT /bank-statements/acc-1"))
				})
			})

			a.Alternative("Header save", func(a *biff.A) {
				resp := api.Request("POST", "/api/statements/acc-1/header/edit").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJson().(JSON)["editing"], true)

				resp = api.Request("PATCH", "/api/statements/acc-1/header").
					WithHeader("Content-Type", "application/json").
					WithBodyJson(JSON{"field": "bankName", "value": "HSBC"}).
					Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = api.Request("POST", "/api/statements/acc-1/header/save").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJson().(JSON)["editing"], false)
				biff.AssertEqual(fb.lastPut().AccountInfo.BankName, "HSBC")
			})

			a.Alternative("Sort and page", func(a *biff.A) {
				resp := api.Request("GET", "/api/statements/acc-1/rows?sort=date&order=desc&pageSize=10").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				body := resp.BodyJson().(JSON)
				first := body["rows"].([]any)[0].(JSON)["record"].(JSON)
				biff.AssertEqual(first["description"], "salary")
				biff.AssertEqual(body["pagination"].(JSON)["pageSize"], 10.0)

				resp = api.Request("GET", "/api/statements/acc-1/rows?sort=nope").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Delete transaction", func(a *biff.A) {
				resp := api.Request("POST", "/api/statements/acc-1/rows/2/delete").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = api.Request("POST", "/api/statements/acc-1/rows/1/delete").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusConflict)

				resp = api.Request("POST", "/api/statements/acc-1/delete/confirm").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(len(resp.BodyJson().(JSON)["rows"].([]any)), 1)
				biff.AssertTrue(fb.called("DELETE /transactions/2"))
			})

			a.Alternative("Close", func(a *biff.A) {
				resp := api.Request("DELETE", "/api/statements/acc-1").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNoContent)

				resp = api.Request("DELETE", "/api/statements/acc-1").Do()
				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})
	})
}

func TestUploadHistoryAPI(t *testing.T) {

	biff.Alternative("Upload history", func(a *biff.A) {

		app, _ := newTestApp(t, newFakeBackend())
		api := apitest.NewWithHandler(adaptor.FiberApp(app))

		a.Alternative("All", func(a *biff.A) {
			resp := api.Request("GET", "/api/uploads").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			body := resp.BodyJson().(JSON)
			rows := body["rows"].([]any)
			biff.AssertEqual(len(rows), 1)
			biff.AssertEqual(rows[0].(JSON)["monthReference"], "Jan/2024")
			biff.AssertEqual(rows[0].(JSON)["createdAt"], "10/01/2024")
		})

		a.Alternative("Filtered out", func(a *biff.A) {
			resp := api.Request("GET", "/api/uploads?bankName=HSBC").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(len(resp.BodyJson().(JSON)["rows"].([]any)), 0)
		})

		a.Alternative("Not sortable", func(a *biff.A) {
			resp := api.Request("GET", "/api/uploads?sort=transactions").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			biff.AssertTrue(strings.Contains(resp.BodyJson().(JSON)["error"].(string), "not sortable"))
		})
	})
}
