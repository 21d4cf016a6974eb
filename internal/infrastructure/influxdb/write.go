package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteUsagePoint mirrors a single energy usage reading.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Dropped silently when the client is not connected, since the relational
// store remains the source of truth.
func (c *Client) WriteUsagePoint(deviceID string, value float64, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"energy_usage",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"usage": value,
		},
		ts,
	)

	c.writeAPI.WritePoint(point)
}
