/*
Package applecpus enumerates the CPU cores of Apple Silicon processors by
walking the device tree plane of the macOS I/O Registry, reporting each
logical CPU's cluster id, cluster type (Efficiency or Performance) and
hardware compatible string, such as “apple,icestorm”.

The package never talks to IOKit itself. Instead, it works on a small
[Registry] contract: the ioreg package implements it on top of IOKit and
CoreFoundation on darwin, while tests use an in-memory fake.

There are two ways of finding the CPUs:

  - [Scan] walks the whole device tree from its root, depth-first, and
    treats every node below the “cpus” node as a CPU, decoding the node's
    property dictionary into a [CPU] descriptor.
  - [Probe] only iterates over the direct children of “/cpus”, looking up
    individual properties and returning a verbose [Report] per CPU node.

[Walk] is the general depth-first walker [Scan] builds upon; it is also
useful for dumping the device tree plane.

Property values are tagged variants ([Data], [Number], [String], [Other]),
to be decoded using [DecodeInt], [DecodeClusterType] and
[DecodeFirstString].

Finally, [List] represents sets of logical CPU numbers as ranges, such as
0-3,8, and [Clusters] groups the CPUs found into their clusters.
*/
package applecpus
