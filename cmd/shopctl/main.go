package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/quickcart/quickcart-golang/internal/checkout"
	"github.com/quickcart/quickcart-golang/internal/client"
	"github.com/quickcart/quickcart-golang/internal/models"
	"github.com/quickcart/quickcart-golang/internal/pricing"
	"github.com/quickcart/quickcart-golang/internal/session"
)

// shopctl is the terminal storefront: browse the catalog, keep a cart
// and wishlist locally, and check out against the API. Session state
// lives under ~/.quickcart so it survives between runs, same as the
// web client's localStorage did.

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: shopctl <command> [args]

Commands:
  register -name NAME -email EMAIL -password PW
  login -email EMAIL -password PW
  logout
  whoami
  products [-search TEXT] [-category NAME]
  product ID
  cart [add ID [QTY] | qty ID QTY | rm ID | clear]
  wishlist [add ID | rm ID]
  checkout -name FULLNAME -address ADDRESS -phone PHONE
  orders`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
	}

	baseURL := os.Getenv("QUICKCART_API")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Cannot locate home directory: %v", err)
	}
	kv, err := session.NewFileKV(filepath.Join(home, ".quickcart"))
	if err != nil {
		log.Fatalf("Cannot open session storage: %v", err)
	}

	store := session.Open(kv)
	api := client.New(baseURL)
	if creds := store.Credentials(); creds != nil {
		api.SetToken(creds.Token)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "register":
		cmdRegister(store, api, args)
	case "login":
		cmdLogin(store, api, args)
	case "logout":
		store.ClearCredentials()
		fmt.Println("Logged out.")
	case "whoami":
		cmdWhoami(store, api)
	case "products":
		cmdProducts(api, args)
	case "product":
		cmdProduct(api, args)
	case "cart":
		cmdCart(store, api, args)
	case "wishlist":
		cmdWishlist(store, api, args)
	case "checkout":
		cmdCheckout(store, api, args)
	case "orders":
		cmdOrders(store, api)
	default:
		usage()
	}
}

// requireLogin runs the auth gate in front of a protected command.
func requireLogin(store *session.Store, api *client.Client, adminOnly bool) {
	decision, err := client.Guard(store, api, adminOnly)
	if err != nil {
		log.Fatalf("Could not verify session: %v", err)
	}
	switch decision {
	case client.DecisionLogin:
		log.Fatal("Please log in first: shopctl login -email ... -password ...")
	case client.DecisionHome:
		log.Fatal("This command needs an admin account.")
	}
}

func cmdRegister(store *session.Store, api *client.Client, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 6 chars)")
	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		log.Fatal("register needs -name, -email and -password")
	}

	result, err := api.Register(*name, *email, *password)
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}
	store.SetCredentials(result.Token, result.User)
	fmt.Printf("Welcome, %s! You are logged in.\n", result.User.Name)
}

func cmdLogin(store *session.Store, api *client.Client, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		log.Fatal("login needs -email and -password")
	}

	result, err := api.Login(*email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	store.SetCredentials(result.Token, result.User)
	fmt.Printf("Welcome back, %s!\n", result.User.Name)
}

func cmdWhoami(store *session.Store, api *client.Client) {
	requireLogin(store, api, false)
	creds := store.Credentials()
	fmt.Printf("%s <%s> (%s)\n", creds.User.Name, creds.User.Email, creds.User.Role)
}

func cmdProducts(api *client.Client, args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	search := fs.String("search", "", "substring of the product name")
	category := fs.String("category", "", "category filter")
	fs.Parse(args)

	products, err := api.ListProducts(*search, *category)
	if err != nil {
		log.Fatalf("Could not fetch products: %v", err)
	}
	if len(products) == 0 {
		fmt.Println("No products found.")
		return
	}
	for _, p := range products {
		fmt.Printf("%4d  %-30s  %10.2f  %-12s  stock %d\n", p.ID, p.Name, p.Price, p.Category, p.StockQuantity)
	}
}

func cmdProduct(api *client.Client, args []string) {
	if len(args) != 1 {
		log.Fatal("product needs exactly one ID")
	}
	id := parseID(args[0])

	p, err := api.GetProduct(id)
	if err != nil {
		log.Fatalf("Could not fetch product: %v", err)
	}
	fmt.Printf("%s (#%d)\n%s\nPrice: %.2f  Category: %s  Stock: %d\n",
		p.Name, p.ID, p.Description, p.Price, p.Category, p.StockQuantity)
}

func cmdCart(store *session.Store, api *client.Client, args []string) {
	if len(args) == 0 {
		printCart(store)
		return
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			log.Fatal("cart add needs a product ID")
		}
		quantity := 1
		if len(args) > 2 {
			quantity = parseQuantity(args[2])
		}
		product, err := api.GetProduct(parseID(args[1]))
		if err != nil {
			log.Fatalf("Could not fetch product: %v", err)
		}
		store.AddToCart(*product, quantity)
		fmt.Printf("Added %d x %s.\n", quantity, product.Name)
	case "qty":
		if len(args) != 3 {
			log.Fatal("cart qty needs a product ID and a quantity")
		}
		store.UpdateQuantity(parseID(args[1]), parseQuantityAllowZero(args[2]))
		printCart(store)
	case "rm":
		if len(args) != 2 {
			log.Fatal("cart rm needs a product ID")
		}
		store.RemoveFromCart(parseID(args[1]))
		printCart(store)
	case "clear":
		store.ClearCart()
		fmt.Println("Cart cleared.")
	default:
		usage()
	}
}

func printCart(store *session.Store) {
	cart := store.Cart()
	if len(cart) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}
	var lines []pricing.LineItem
	for _, item := range cart {
		fmt.Printf("%4d  %-30s  %8.2f x %d = %8.2f\n",
			item.Product.ID, item.Product.Name, item.Product.Price, item.Quantity,
			item.Product.Price*float64(item.Quantity))
		lines = append(lines, pricing.LineItem{UnitPrice: item.Product.Price, Quantity: item.Quantity})
	}
	totals := pricing.Compute(lines)
	fmt.Printf("Subtotal: %.2f  Tax: %.2f  Total: %.2f\n",
		pricing.Round2(totals.Subtotal), pricing.Round2(totals.Tax), pricing.Round2(totals.Total))
}

func cmdWishlist(store *session.Store, api *client.Client, args []string) {
	if len(args) == 0 {
		wishlist := store.Wishlist()
		if len(wishlist) == 0 {
			fmt.Println("Your wishlist is empty.")
			return
		}
		for _, entry := range wishlist {
			fmt.Printf("%4d  %-30s  %10.2f\n", entry.Product.ID, entry.Product.Name, entry.Product.Price)
		}
		return
	}

	switch args[0] {
	case "add":
		if len(args) != 2 {
			log.Fatal("wishlist add needs a product ID")
		}
		product, err := api.GetProduct(parseID(args[1]))
		if err != nil {
			log.Fatalf("Could not fetch product: %v", err)
		}
		store.AddToWishlist(*product)
		fmt.Printf("Saved %s for later.\n", product.Name)
	case "rm":
		if len(args) != 2 {
			log.Fatal("wishlist rm needs a product ID")
		}
		store.RemoveFromWishlist(parseID(args[1]))
		fmt.Println("Removed.")
	default:
		usage()
	}
}

func cmdCheckout(store *session.Store, api *client.Client, args []string) {
	requireLogin(store, api, false)

	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	address := fs.String("address", "", "delivery address")
	phone := fs.String("phone", "", "phone number")
	city := fs.String("city", "", "city (optional)")
	country := fs.String("country", "", "country (optional)")
	fs.Parse(args)

	flow := &checkout.Flow{Store: store, API: api}

	preview := flow.Preview()
	fmt.Printf("Order preview -> Subtotal: %.2f  Tax: %.2f  Total: %.2f\n",
		pricing.Round2(preview.Subtotal), pricing.Round2(preview.Tax), pricing.Round2(preview.Total))

	order, err := flow.Submit(client.ShippingAddressRequest{
		FullName: *name,
		Address:  *address,
		Phone:    *phone,
		City:     *city,
		Country:  *country,
	})
	if err != nil {
		log.Fatalf("Checkout failed: %v", err)
	}

	fmt.Printf("Order #%d placed! Status: %s  Total charged: %.2f\n",
		order.ID, order.Status, pricing.Round2(order.TotalPrice))
}

func cmdOrders(store *session.Store, api *client.Client) {
	requireLogin(store, api, false)

	orders, err := api.MyOrders()
	if err != nil {
		// Offline-ish fallback: show the last known history.
		log.Printf("Could not refresh orders (%v); showing local history.", err)
		orders = store.Orders()
	} else {
		store.SetOrders(orders)
	}

	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return
	}
	for _, o := range orders {
		printOrder(o)
	}
}

func printOrder(o models.Order) {
	fmt.Printf("Order #%d  %s  Total: %.2f  Placed: %s\n",
		o.ID, o.Status, pricing.Round2(o.TotalPrice), o.CreatedAt.Format("2006-01-02 15:04"))
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		log.Fatalf("Invalid product ID %q", s)
	}
	return id
}

func parseQuantity(s string) int {
	quantity := parseQuantityAllowZero(s)
	if quantity <= 0 {
		log.Fatalf("Quantity must be at least 1, got %q", s)
	}
	return quantity
}

func parseQuantityAllowZero(s string) int {
	quantity, err := strconv.Atoi(s)
	if err != nil || quantity < 0 {
		log.Fatalf("Invalid quantity %q", s)
	}
	return quantity
}
