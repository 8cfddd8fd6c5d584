/*
Example program for the MI-File Go SDK.

Run this after the server has started (default address: http://localhost:8080).
It will:
  1. Perform a health-check.
  2. Create a collection called 'demo'.
  3. Insert random documents and build the MI-File.
  4. Perform a vector search.
  5. Clean up by deleting the collection.

Usage:
$ go run ./client-sdk/Go/example
*/
package main

import (
	"fmt"
	"math/rand/v2"

	"mifile/client-sdk/Go/client"
)

func randomVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return v
}

func main() {
	c := client.NewClient("http://localhost:8080")

	ok, err := c.HealthCheck()
	if err != nil {
		panic(err)
	}
	fmt.Println("Health check:", ok)

	if _, err := c.CreateCollection("demo", 32, "cos", nil); err != nil {
		panic(err)
	}
	fmt.Println("Created collection: demo")

	docs := make([]client.Document, 1000)
	for i := range docs {
		docs[i] = client.Document{ID: fmt.Sprintf("%d", i), Vector: randomVector(32)}
	}
	if err := c.BatchUpsertDocuments("demo", docs); err != nil {
		panic(err)
	}
	if err := c.BuildIndex("demo"); err != nil {
		panic(err)
	}
	fmt.Println("Inserted 1000 documents and built the index")

	res, err := c.SearchVectors("demo", randomVector(32), 5)
	if err != nil {
		panic(err)
	}
	for _, hit := range res.Results {
		fmt.Printf("  %s  %.4f\n", hit.ID, hit.Distance)
	}
	if res.Stats != nil {
		fmt.Printf("candidates=%d pruned=%d survivors=%d\n", res.Stats.Candidates, res.Stats.Pruned, res.Stats.Survivors)
	}

	if err := c.DeleteCollection("demo"); err != nil {
		panic(err)
	}
	fmt.Println("Deleted collection 'demo'")
}
