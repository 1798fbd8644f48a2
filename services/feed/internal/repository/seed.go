package repository

import (
	"fmt"
	"math"
)

var (
	seedAdjectives = []string{"Classic", "Light", "Winter", "Sport", "Soft", "Compact", "Smart", "Retro"}
	seedNouns      = []string{"Boots", "Jacket", "Kettle", "Lamp", "Backpack", "Headphones", "Mug", "Scarf", "Chair", "Watch"}
	seedProducers  = []string{"Acme", "Northwind", "Globex", "Initech", "Umbrella"}
	seedCategories = []Category{
		{ID: 1, Title: "Clothes"},
		{ID: 2, Title: "Shoes"},
		{ID: 3, Title: "Home"},
		{ID: 4, Title: "Electronics"},
		{ID: 5, Title: "Accessories"},
	}
)

// SeedProducts детерминированный демо-каталог из n товаров с id 1..n.
// У каждого третьего товара нет картинки, чтобы было видно заглушку.
func SeedProducts(n int) []Product {
	products := make([]Product, 0, n)
	for i := 1; i <= n; i++ {
		adj := seedAdjectives[i%len(seedAdjectives)]
		noun := seedNouns[(i/len(seedAdjectives))%len(seedNouns)]

		p := Product{
			ID:               int64(i),
			Title:            fmt.Sprintf("%s %s #%d", adj, noun, i),
			Producer:         seedProducers[i%len(seedProducers)],
			ShortDescription: fmt.Sprintf("%s %s, a demo product of the catalog feed.", adj, noun),
			Price:            math.Round((float64(i%97)*10.5+99)*100) / 100,
			Categories: []Category{
				seedCategories[i%len(seedCategories)],
				seedCategories[(i+2)%len(seedCategories)],
			},
		}
		if i%3 != 0 {
			p.ImageURL = fmt.Sprintf("https://img.example.com/products/%d.png", i)
		}
		products = append(products, p)
	}
	return products
}
