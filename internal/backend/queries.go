package backend

const productFields = `
  id
  title
  price
  stock
  category
  rating
  imageUrls
  description
`

const orderFields = `
  id
  status
  total
  contactInfo
  shippingAddress
  userId
  items {
    productId
    quantity
  }
`

// CartQuery fetches the caller's server-held cart
const CartQuery = `
query getCart {
  cart {
    productId
    quantity
  }
}
`

// ProductsQuery fetches the full catalog snapshot
const ProductsQuery = `
query getAllProducts {
  products {` + productFields + `}
}
`

// ProductQuery fetches a single product by id
const ProductQuery = `
query getProduct($id: Nat!) {
  product(id: $id) {` + productFields + `}
}
`

// SearchProductsQuery matches products by title or description
const SearchProductsQuery = `
query searchProducts($term: String!) {
  searchProducts(term: $term) {` + productFields + `}
}
`

// ProductsByCategoryQuery filters the catalog by category
const ProductsByCategoryQuery = `
query filterByCategory($category: String!) {
  productsByCategory(category: $category) {` + productFields + `}
}
`

// ProductsByPriceQuery returns the catalog sorted by price
const ProductsByPriceQuery = `
query sortProductsByPrice($ascending: Boolean!) {
  productsByPrice(ascending: $ascending) {` + productFields + `}
}
`

// OrderQuery fetches one of the caller's orders
const OrderQuery = `
query getOrder($id: Nat!) {
  order(id: $id) {` + orderFields + `}
}
`

// UserOrdersQuery lists the caller's orders
const UserOrdersQuery = `
query getUserOrders {
  userOrders {` + orderFields + `}
}
`

// CallerProfileQuery fetches the caller's saved profile, null when none
const CallerProfileQuery = `
query getCallerUserProfile {
  callerUserProfile {
    name
    email
    phone
  }
}
`
