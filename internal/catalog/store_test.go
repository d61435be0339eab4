package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

func seedProduct(t *testing.T, mock *mockDynamo, table string, p Product) {
	t.Helper()
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		t.Fatalf("marshal product: %v", err)
	}
	mock.add(table, item)
}

func seedCategory(t *testing.T, mock *mockDynamo, table string, c Category) {
	t.Helper()
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		t.Fatalf("marshal category: %v", err)
	}
	mock.add(table, item)
}

func TestMainCategories_SortedByName(t *testing.T) {
	mock := newMockDynamo()
	seedCategory(t, mock, "categories", Category{ID: "c2", Name: "Fruits"})
	seedCategory(t, mock, "categories", Category{ID: "c1", Name: "Boissons"})
	seedCategory(t, mock, "categories", Category{ID: "c3", Name: "Épicerie"})

	s := NewStore(mock, "products", "categories", "countries")
	cats, err := s.MainCategories(context.Background())
	if err != nil {
		t.Fatalf("MainCategories error: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[0].Name != "Boissons" || cats[1].Name != "Fruits" {
		t.Fatalf("unexpected order: %s, %s, %s", cats[0].Name, cats[1].Name, cats[2].Name)
	}
}

func TestProductsByCategory_FiltersOnMembership(t *testing.T) {
	mock := newMockDynamo()
	seedProduct(t, mock, "products", Product{ID: "p1", Name: "Pomme", CategoryIDs: []string{"fruits", "promo"}})
	seedProduct(t, mock, "products", Product{ID: "p2", Name: "Lait", CategoryIDs: []string{"cremerie"}})
	seedProduct(t, mock, "products", Product{ID: "p3", Name: "Abricot", CategoryIDs: []string{"fruits"}})

	s := NewStore(mock, "products", "categories", "countries")
	products, err := s.ProductsByCategory(context.Background(), "fruits")
	if err != nil {
		t.Fatalf("ProductsByCategory error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	// ordered by name
	if products[0].Name != "Abricot" || products[1].Name != "Pomme" {
		t.Fatalf("unexpected order: %s, %s", products[0].Name, products[1].Name)
	}
}

func TestSearchProducts_CaseInsensitive(t *testing.T) {
	mock := newMockDynamo()
	seedProduct(t, mock, "products", Product{ID: "p1", Name: "Pomme Golden", NameLC: "pomme golden"})
	seedProduct(t, mock, "products", Product{ID: "p2", Name: "Compote de pomme", NameLC: "compote de pomme"})
	seedProduct(t, mock, "products", Product{ID: "p3", Name: "Lait entier", NameLC: "lait entier"})

	s := NewStore(mock, "products", "categories", "countries")
	products, err := s.SearchProducts(context.Background(), "POMME")
	if err != nil {
		t.Fatalf("SearchProducts error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(products))
	}
	if products[0].Name != "Compote de pomme" {
		t.Fatalf("expected name ordering, got %s first", products[0].Name)
	}
}

func TestProductByID_MissReturnsNilNil(t *testing.T) {
	mock := newMockDynamo()
	seedProduct(t, mock, "products", Product{ID: "p1", Name: "Pomme"})

	s := NewStore(mock, "products", "categories", "countries")

	p, err := s.ProductByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ProductByID error: %v", err)
	}
	if p == nil || p.Name != "Pomme" {
		t.Fatalf("expected Pomme, got %+v", p)
	}

	missing, err := s.ProductByID(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ProductByID error on miss: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing product, got %+v", missing)
	}
}

func TestScan_FollowsPagination(t *testing.T) {
	mock := newMockDynamo()
	mock.pageSize = 2
	for _, p := range []Product{
		{ID: "p1", Name: "A", CategoryIDs: []string{"x"}},
		{ID: "p2", Name: "B", CategoryIDs: []string{"x"}},
		{ID: "p3", Name: "C", CategoryIDs: []string{"x"}},
		{ID: "p4", Name: "D", CategoryIDs: []string{"x"}},
		{ID: "p5", Name: "E", CategoryIDs: []string{"x"}},
	} {
		seedProduct(t, mock, "products", p)
	}

	s := NewStore(mock, "products", "categories", "countries")
	products, err := s.ProductsByCategory(context.Background(), "x")
	if err != nil {
		t.Fatalf("ProductsByCategory error: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("expected all 5 products across pages, got %d", len(products))
	}
	if mock.scans != 3 {
		t.Fatalf("expected 3 scan pages, got %d", mock.scans)
	}
}

func TestScan_ErrorPropagates(t *testing.T) {
	mock := newMockDynamo()
	mock.scanErr = errors.New("throttled")

	s := NewStore(mock, "products", "categories", "countries")
	if _, err := s.MainCategories(context.Background()); err == nil {
		t.Fatal("expected scan error to propagate")
	}
}

func TestOriginCountries_Sorted(t *testing.T) {
	mock := newMockDynamo()
	for _, c := range []OriginCountry{
		{ID: "fr", Name: "France"},
		{ID: "es", Name: "Espagne"},
		{ID: "ma", Name: "Maroc"},
	} {
		item, err := attributevalue.MarshalMap(c)
		if err != nil {
			t.Fatalf("marshal country: %v", err)
		}
		mock.add("countries", item)
	}

	s := NewStore(mock, "products", "categories", "countries")
	countries, err := s.OriginCountries(context.Background())
	if err != nil {
		t.Fatalf("OriginCountries error: %v", err)
	}
	if len(countries) != 3 {
		t.Fatalf("expected 3 countries, got %d", len(countries))
	}
	if countries[0].Name != "Espagne" || countries[2].Name != "Maroc" {
		t.Fatalf("unexpected order: %+v", countries)
	}
}
