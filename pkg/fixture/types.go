package fixture

import (
	"errors"
	"fmt"
)

// Ingredient is one entry of the ingredients catalogue.
type Ingredient struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Proteins      int    `json:"proteins"`
	Fat           int    `json:"fat"`
	Carbohydrates int    `json:"carbohydrates"`
	Calories      int    `json:"calories"`
	Price         int    `json:"price"`
	Image         string `json:"image"`
	ImageMobile   string `json:"image_mobile"`
	ImageLarge    string `json:"image_large"`
}

// IngredientsResponse is the body of GET /api/ingredients.
type IngredientsResponse struct {
	Success bool         `json:"success"`
	Data    []Ingredient `json:"data"`
}

// Find returns the ingredient with the given id.
func (r IngredientsResponse) Find(id string) (Ingredient, bool) {
	for _, ing := range r.Data {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}

func (r IngredientsResponse) validate() error {
	if len(r.Data) == 0 {
		return fmt.Errorf("fixture %s: data must not be empty", Ingredients)
	}
	seen := make(map[string]bool, len(r.Data))
	var errs []error
	for i, ing := range r.Data {
		switch {
		case ing.ID == "":
			errs = append(errs, fmt.Errorf("fixture %s: data[%d]: _id is required", Ingredients, i))
		case seen[ing.ID]:
			errs = append(errs, fmt.Errorf("fixture %s: duplicate _id %s", Ingredients, ing.ID))
		case ing.Name == "" || ing.Type == "":
			errs = append(errs, fmt.Errorf("fixture %s: %s: name and type are required", Ingredients, ing.ID))
		}
		seen[ing.ID] = true
	}
	return errors.Join(errs...)
}

// Profile is the user object of the auth endpoints.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserResponse is the body of POST /api/auth/login and GET /api/auth/user.
type UserResponse struct {
	Success      bool    `json:"success"`
	User         Profile `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

// Order is the order object of POST /api/orders. Number is a pointer so a
// fixture without it can be told apart from order zero.
type Order struct {
	Number *int `json:"number"`
}

// OrderResponseBody is the body of POST /api/orders.
type OrderResponseBody struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
	Order   Order  `json:"order"`
}
