package models

type Location struct {
	Base
	Name string `json:"name"`
}

type Area struct {
	Base
	Name string `json:"name"`
}
