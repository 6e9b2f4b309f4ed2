/*
Package locking serializes work on records.

A Manager hands out one in-process mutex per key, reference counted so that idle keys do
not accumulate, and optionally takes a ports.DistributedLocker lock as well so that several
processes sharing a store never edit the same record at once.
*/
package locking
