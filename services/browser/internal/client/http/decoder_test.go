package http

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

func TestJSONDecoder_DecodePage(t *testing.T) {
	raw := []byte(`{"products":[
		{"id":1,"title":"Boots","producer":"Acme","price":1999.5,"imageUrl":"","categories":[{"id":3,"title":"Shoes"},{"id":4,"title":"Winter"}]},
		{"id":2,"title":"Hat","price":10}
	]}`)

	items, err := JSONDecoder{}.DecodePage(raw)
	require.NoError(t, err)
	require.Equal(t, []model.Item{
		{ID: 1, Title: "Boots", Producer: "Acme", Price: 1999.5, Category: "Shoes"},
		{ID: 2, Title: "Hat", Price: 10},
	}, items)
}

func TestJSONDecoder_DecodePageErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"products":[`},
		{"missing products", `{"items":[]}`},
		{"wrong shape", `{"products":{"id":1}}`},
		{"invalid id", `{"products":[{"id":0,"title":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSONDecoder{}.DecodePage([]byte(tt.raw))
			require.True(t, catalog.IsDecode(err), "got %v", err)
		})
	}
}

func TestJSONDecoder_DecodeItem(t *testing.T) {
	raw := []byte(`{"product":{"id":9,"title":"Kettle","producer":"Tefal","shortDescription":"1.7 l","imageUrl":"http://img/9.png","price":25,"categories":[{"id":1,"title":"Kitchen"}]}}`)

	item, err := JSONDecoder{}.DecodeItem(raw)
	require.NoError(t, err)
	require.Equal(t, int64(9), item.ID)
	require.Equal(t, "Kitchen", item.Category)
	require.Equal(t, "1.7 l", item.ShortDescription)
	require.Equal(t, []model.Category{{ID: 1, Title: "Kitchen"}}, item.Categories)

	_, err = JSONDecoder{}.DecodeItem([]byte(`{}`))
	require.True(t, catalog.IsDecode(err))
}
