// Package installation partitions caller-supplied installations into
// per-platform device buckets.
package installation

import "github.com/tinywideclouds/go-sns-push-service/pkg/push"

// Classify groups installations by effective platform. The result has one
// entry for every member of valid, empty when nothing matched. Installations
// without a token, or whose platform is not in valid, are dropped. Input
// order is kept within a bucket and duplicates are not removed.
func Classify(installations []push.Installation, valid []push.Platform) map[push.Platform][]push.Device {
	buckets := make(map[push.Platform][]push.Device, len(valid))
	for _, p := range valid {
		buckets[p] = []push.Device{}
	}

	for _, inst := range installations {
		if inst.DeviceToken == "" {
			continue
		}
		platform := push.Platform(inst.EffectivePlatform())
		bucket, ok := buckets[platform]
		if !ok {
			continue
		}
		buckets[platform] = append(bucket, push.Device{
			Token:         inst.DeviceToken,
			AppIdentifier: inst.AppIdentifier,
		})
	}
	return buckets
}
