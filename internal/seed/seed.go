// Package seed содержит начальные данные магазина: администратора
// по умолчанию и демонстрационный каталог.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mmeshcher/luxedropship/internal/model"
)

//go:embed seed.yaml
var defaultData []byte

// Data: начальные данные коллекций.
type Data struct {
	Users    []model.User
	Products []model.Product
}

type file struct {
	Users    []user    `yaml:"users"`
	Products []product `yaml:"products"`
}

type user struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type product struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	NameEn        string   `yaml:"nameEn"`
	Price         float64  `yaml:"price"`
	OriginalPrice float64  `yaml:"originalPrice"`
	Category      string   `yaml:"category"`
	Image         string   `yaml:"image"`
	Description   string   `yaml:"description"`
	DescriptionEn string   `yaml:"descriptionEn"`
	Stock         int      `yaml:"stock"`
	Tags          []string `yaml:"tags"`
}

// Default возвращает встроенные начальные данные.
func Default() (Data, error) {
	return Parse(defaultData)
}

// Parse разбирает начальные данные в формате YAML.
func Parse(data []byte) (Data, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Data{}, fmt.Errorf("parse seed data: %w", err)
	}

	out := Data{
		Users:    make([]model.User, 0, len(f.Users)),
		Products: make([]model.Product, 0, len(f.Products)),
	}
	for _, u := range f.Users {
		out.Users = append(out.Users, model.User{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
			Role:     model.Role(u.Role),
		})
	}
	for _, p := range f.Products {
		out.Products = append(out.Products, model.Product{
			ID:            p.ID,
			Name:          p.Name,
			NameEn:        p.NameEn,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Category:      p.Category,
			Image:         p.Image,
			Description:   p.Description,
			DescriptionEn: p.DescriptionEn,
			Stock:         p.Stock,
			Tags:          p.Tags,
		})
	}
	return out, nil
}
