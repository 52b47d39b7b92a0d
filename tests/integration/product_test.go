//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func getProduct(t *testing.T, id string) productResponse {
	t.Helper()

	resp := doGet(t, "/api/products/"+id)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get product %s: expected 200, got %d", id, resp.StatusCode)
	}
	return decodeJSON[productResponse](t, resp)
}

func TestListProducts_All(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 4 {
		t.Errorf("expected at least 4 products, got %d", len(products))
	}
}

func TestListProducts_FilteredByStore(t *testing.T) {
	resp := doGet(t, "/api/products?storeId=store-branch")
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)
	for _, p := range products {
		if p.StoreID != "store-branch" {
			t.Errorf("product %s belongs to %s", p.ID, p.StoreID)
		}
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/prod-ghost")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if len(body.Message) != 1 || body.Message[0] != "Product Not Found" {
		t.Errorf("message: got %v", body.Message)
	}
}

func TestCreateProduct_RequiresAuth(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"storeId": "store-main", "name": "Rug", "price": 30.0, "stock": 5,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_Success(t *testing.T) {
	resp := doPostWithAuth(t, "/api/products", map[string]any{
		"storeId": "store-main", "name": "Rug", "price": 30.0, "stock": 5,
	}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	p := decodeJSON[productResponse](t, resp)
	if !uuidPattern.MatchString(p.ID) {
		t.Errorf("generated id %q is not a UUID", p.ID)
	}
	if p.Name != "Rug" || p.Stock != 5 {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestEditProduct_PartialUpdate(t *testing.T) {
	created := doPostWithAuth(t, "/api/products", map[string]any{
		"storeId": "store-main", "name": "Shelf", "price": 80.0, "stock": 12,
	}, testAPIKey)
	defer created.Body.Close()
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", created.StatusCode)
	}
	p := decodeJSON[productResponse](t, created)

	resp := doPatchWithAuth(t, "/api/products/"+p.ID, map[string]any{"price": 75.0}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[productResponse](t, resp)
	if updated.Price != 75.0 {
		t.Errorf("price: got %v, want 75", updated.Price)
	}
	if updated.Name != "Shelf" || updated.Stock != 12 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.Version != p.Version+1 {
		t.Errorf("version: got %d, want %d", updated.Version, p.Version+1)
	}
}

func TestEditProduct_RequiresAuth(t *testing.T) {
	req, err := http.NewRequest(http.MethodPatch, baseURL+"/api/products/prod-lamp", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_UnknownStore(t *testing.T) {
	resp := doPostWithAuth(t, "/api/products", map[string]any{
		"storeId": "store-ghost", "name": "Rug", "price": 30.0, "stock": 5,
	}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStores_ListAndGet(t *testing.T) {
	resp := doGet(t, "/api/stores")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	stores := decodeJSON[[]storeResponse](t, resp)
	if len(stores) < 2 {
		t.Errorf("expected at least 2 stores, got %d", len(stores))
	}

	single := doGet(t, "/api/stores/store-main")
	defer single.Body.Close()
	if single.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", single.StatusCode)
	}
	s := decodeJSON[storeResponse](t, single)
	if s.Name != "Main Street Store" {
		t.Errorf("name: got %q", s.Name)
	}
}

func TestCreateStore_Success(t *testing.T) {
	resp := doPostWithAuth(t, "/api/stores", map[string]any{"name": "Pop-up Store"}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	s := decodeJSON[storeResponse](t, resp)
	if !uuidPattern.MatchString(s.ID) {
		t.Errorf("generated id %q is not a UUID", s.ID)
	}
}
