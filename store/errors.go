package store

import "errors"

var (
	ErrBookNotFound     = errors.New("store: book not found")
	ErrAccountNotFound  = errors.New("store: account not found")
	ErrUserNameTaken    = errors.New("store: username already exists")
	ErrBadCredentials   = errors.New("store: the username or password is incorrect")
	ErrBadAdminPassword = errors.New("store: the admin password entered is incorrect")
	ErrWrongPassword    = errors.New("store: old password does not match")
	ErrNotPermitted     = errors.New("store: operation not permitted for this account")

	ErrInvalidQuantity = errors.New("store: quantity must be greater than zero")
	ErrOutOfStock      = errors.New("store: this item is out of stock")
	ErrStockLimit      = errors.New("store: you have already added as many of this item as there are in stock")
	ErrCartFull        = errors.New("store: you have already reached a max of 10 items in your cart")
	ErrNotInCart       = errors.New("store: book is not in the cart")
	ErrEmptyCart       = errors.New("store: cart is empty")
)
